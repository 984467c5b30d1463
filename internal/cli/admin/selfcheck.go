package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/attica-health/carebot/internal/config"
	"github.com/attica-health/carebot/internal/openai"
	"github.com/attica-health/carebot/internal/repository"
	"github.com/attica-health/carebot/internal/service"
	"github.com/spf13/cobra"
)

// selfcheckProbes are sent through the full assistant pipeline. They cover
// the deterministic guards, triage and the provider path when configured.
var selfcheckProbes = []struct {
	name    string
	message string
	locale  string
}{
	{"no-letters guard", "???", ""},
	{"smoke probe", "тест smoke", ""},
	{"greeting en", "hello", "en"},
	{"greeting ru", "привет", "ru"},
	{"kb question", "Можно ли пить кофе при беременности?", "ru"},
	{"red-flag triage", "У меня сильное кровотечение, что делать?", "ru"},
}

func SelfcheckCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "selfcheck",
		Short: "Run probe messages through the assistant pipeline",
		Long: "Send a fixed set of probe messages through the full assistant " +
			"pipeline for one project and print each reply. Useful after " +
			"deploys to verify retrieval, triage and the provider path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfcheck(key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Public key of the project to check")
	cmd.MarkFlagRequired("key")

	return cmd
}

func runSelfcheck(publicKey string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	project, err := repository.NewProjectRepository(pool).GetByKey(ctx, publicKey)
	if err != nil {
		return fmt.Errorf("failed to resolve project: %w", err)
	}

	provider := openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
		Timeout:        cfg.OpenAITimeout,
		Temperature:    cfg.OpenAITemperature,
	})
	retrievalSvc := service.NewRetrievalServiceWithMaxDistance(
		repository.NewKnowledgeChunkRepository(pool), cfg.KBVectorMaxDistance)
	assistant := service.NewAssistantService(provider, retrievalSvc, cfg.IsProduction())

	fmt.Printf("Project: %s (%s)\n", project.Name, project.ID)
	fmt.Printf("Provider configured: %v\n\n", provider.Configured())

	failed := 0
	for _, probe := range selfcheckProbes {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		resp, err := assistant.Chat(probeCtx, project, service.ChatRequest{
			Message: probe.message,
			Locale:  probe.locale,
		})
		cancel()

		fmt.Printf("[%s] %q\n", probe.name, probe.message)
		if err != nil {
			failed++
			fmt.Printf("  ERROR: %v\n\n", err)
			continue
		}
		fmt.Printf("  level=%s warnings=%d sources=%d\n", resp.SafetyLevel, len(resp.Warnings), len(resp.Sources))
		fmt.Printf("  reply: %s\n\n", resp.Reply)
	}

	if failed > 0 {
		return fmt.Errorf("selfcheck failed: %d of %d probes errored", failed, len(selfcheckProbes))
	}
	fmt.Printf("All %d probes answered\n", len(selfcheckProbes))
	return nil
}
