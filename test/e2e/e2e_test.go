//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coffeeText = "Кофе при беременности можно пить в умеренных количествах. " +
	"Врачи рекомендуют не более 200 мг кофеина в день, это примерно одна чашка. " +
	"Лучше выбирать напитки без кофеина во второй половине дня. " +
	"Крепкий чай тоже содержит кофеин и учитывается в дневной норме."

func TestE2E_HealthAndVersion(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Get("/v1/health", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = env.Get("/v1/version", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_ProjectAuth(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	t.Run("missing key", func(t *testing.T) {
		resp, err := env.Post("/v1/chat", map[string]string{"message": "hello"}, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("unknown key", func(t *testing.T) {
		resp, err := env.Post("/v1/chat", map[string]string{"message": "hello"}, "pk_unknown")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid key", func(t *testing.T) {
		chatResp, _, err := env.Chat(env.Project.PublicKey, "привет", "")
		require.NoError(t, err)
		require.NotNil(t, chatResp)
		assert.NotEmpty(t, chatResp.Reply)
	})
}

func TestE2E_PublicConfig(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	resp, err := env.Get("/v1/projects/public-config", env.Project.PublicKey)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg struct {
		Name          string `json:"name"`
		LocaleDefault string `json:"locale_default"`
		Disclaimer    string `json:"disclaimer"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &cfg))
	assert.Equal(t, env.Project.Name, cfg.Name)
	assert.Equal(t, "ru", cfg.LocaleDefault)
	assert.NotEmpty(t, cfg.Disclaimer)
}

func TestE2E_KnowledgeBaseLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()
	key := env.Project.PublicKey

	var sourceID string

	t.Run("ingest source", func(t *testing.T) {
		resp, err := env.Post("/v1/kb/sources", map[string]string{
			"title": "Кофеин",
			"text":  coffeeText,
		}, key)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var src struct {
			ID         string `json:"id"`
			Title      string `json:"title"`
			ChunkCount int    `json:"chunk_count"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &src))
		assert.NotEmpty(t, src.ID)
		assert.Equal(t, "Кофеин", src.Title)
		assert.Greater(t, src.ChunkCount, 0)
		sourceID = src.ID
	})

	t.Run("list sources", func(t *testing.T) {
		resp, err := env.Get("/v1/kb/sources", key)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var sources []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &sources))
		require.Len(t, sources, 1)
		assert.Equal(t, sourceID, sources[0].ID)
	})

	t.Run("chat answers from knowledge base", func(t *testing.T) {
		chatResp, _, err := env.Chat(key, "Можно ли пить кофе при беременности?", "ru")
		require.NoError(t, err)
		require.NotNil(t, chatResp)

		assert.Contains(t, strings.ToLower(chatResp.Reply), "кофе")
		require.NotEmpty(t, chatResp.Sources)
		assert.Equal(t, sourceID, chatResp.Sources[0].SourceID)
		assert.Equal(t, "Кофеин", chatResp.Sources[0].Title)
	})

	t.Run("delete source", func(t *testing.T) {
		resp, err := env.Delete("/v1/kb/sources/"+sourceID, key)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		listResp, err := env.Get("/v1/kb/sources", key)
		require.NoError(t, err)
		var sources []json.RawMessage
		require.NoError(t, json.Unmarshal(listResp.Data, &sources))
		assert.Empty(t, sources)
	})

	t.Run("chat without knowledge base has no sources", func(t *testing.T) {
		chatResp, _, err := env.Chat(key, "Можно ли пить кофе при беременности?", "ru")
		require.NoError(t, err)
		require.NotNil(t, chatResp)
		assert.Empty(t, chatResp.Sources)
		assert.NotEmpty(t, chatResp.Reply)
	})
}

func TestE2E_ChatGuardsAndTriage(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()
	key := env.Project.PublicKey

	t.Run("no letters", func(t *testing.T) {
		chatResp, _, err := env.Chat(key, "???!!!", "ru")
		require.NoError(t, err)
		require.NotNil(t, chatResp)
		assert.NotEmpty(t, chatResp.Reply)
		assert.Equal(t, "normal", string(chatResp.SafetyLevel))
		assert.Empty(t, chatResp.Sources)
	})

	t.Run("smoke probe outside production", func(t *testing.T) {
		chatResp, _, err := env.Chat(key, "тест smoke", "ru")
		require.NoError(t, err)
		require.NotNil(t, chatResp)
		assert.NotEmpty(t, chatResp.Reply)
		assert.Equal(t, "normal", string(chatResp.SafetyLevel))
	})

	t.Run("red-flag symptoms escalate", func(t *testing.T) {
		chatResp, _, err := env.Chat(key, "У меня сильное кровотечение, что делать?", "ru")
		require.NoError(t, err)
		require.NotNil(t, chatResp)
		assert.Equal(t, "urgent", string(chatResp.SafetyLevel))
		assert.NotEmpty(t, chatResp.Warnings)
	})

	t.Run("empty message rejected", func(t *testing.T) {
		resp, err := env.Post("/v1/chat", map[string]string{"message": "   "}, key)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
