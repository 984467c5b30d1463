//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/attica-health/carebot/internal/api/handlers"
	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/limiter"
	"github.com/attica-health/carebot/internal/openai"
	"github.com/attica-health/carebot/internal/repository"
	"github.com/attica-health/carebot/internal/server"
	"github.com/attica-health/carebot/internal/service"
	"github.com/attica-health/carebot/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv holds all resources needed for E2E tests. The server runs
// without a generation provider, so chat goes through the deterministic
// knowledge-base path.
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	Project      *domain.Project
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database container
// and a running server.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Bootstrap creates a project for testing and remembers it on the env.
func (e *E2ETestEnv) Bootstrap() {
	now := time.Now().UTC()
	project := &domain.Project{
		ID:                 uuid.NewString(),
		Name:               "E2E Test Project",
		PublicKey:          "pk_e2e_" + uuid.NewString(),
		AllowedOrigins:     []string{},
		LocaleDefault:      "ru",
		DisclaimerTemplate: "",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := repository.NewProjectRepository(e.Pool).Create(e.Ctx, project); err != nil {
		e.T.Fatalf("failed to create project: %v", err)
	}
	e.Project = project
}

// APIResponse is one HTTP exchange: the status code plus the raw body.
// Enveloped endpoints carry data/error, the chat endpoint a bare reply.
type APIResponse struct {
	StatusCode int
	Body       []byte
	Data       json.RawMessage
	Error      string
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, projectKey string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, projectKey)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, projectKey string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, projectKey)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, projectKey string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, projectKey)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, projectKey string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if projectKey != "" {
		req.Header.Set("X-Project-Key", projectKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	out := &APIResponse{StatusCode: resp.StatusCode, Body: respBody}
	if len(respBody) > 0 {
		var envelope struct {
			Data  json.RawMessage `json:"data"`
			Error string          `json:"error"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil {
			out.Data = envelope.Data
			out.Error = envelope.Error
		}
	}
	return out, nil
}

// Chat posts a chat message and decodes the bare reply contract.
func (e *E2ETestEnv) Chat(projectKey, message, locale string) (*domain.ChatResponse, *APIResponse, error) {
	resp, err := e.Post("/v1/chat", map[string]string{
		"message": message,
		"locale":  locale,
	}, projectKey)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, nil
	}

	var chatResp domain.ChatResponse
	if err := json.Unmarshal(resp.Body, &chatResp); err != nil {
		return nil, resp, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &chatResp, resp, nil
}

// startServer starts the HTTP server with all handlers and no provider.
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	projectRepo := repository.NewProjectRepository(pool)
	sourceRepo := repository.NewKnowledgeSourceRepository(pool)
	chunkRepo := repository.NewKnowledgeChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	retrievalSvc := service.NewRetrievalService(chunkRepo)
	// An empty provider config yields the "not configured" client, so chat
	// runs the deterministic knowledge-base path.
	assistantSvc := service.NewAssistantService(openai.NewClient(openai.Config{}), retrievalSvc, false)
	knowledgeSvc := service.NewKnowledgeService(sourceRepo, txRunner)

	router := server.NewRouter(server.RouterConfig{
		ProjectResolver:  service.NewProjectCache(projectRepo),
		RateLimiter:      limiter.NewMemoryLimiter(time.Minute, 1000),
		Production:       false,
		ChatHandler:      handlers.NewChatHandler(assistantSvc),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		ProjectHandler:   handlers.NewProjectHandler(),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/v1/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
