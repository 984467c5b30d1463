package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/attica-health/carebot/internal/config"
	"github.com/attica-health/carebot/internal/repository"
	"github.com/attica-health/carebot/internal/service"
	"github.com/attica-health/carebot/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func KBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage project knowledge bases",
		Long:  "Ingest, list and delete knowledge sources",
	}

	cmd.AddCommand(KBIngestCmd())
	cmd.AddCommand(KBListCmd())
	cmd.AddCommand(KBDeleteCmd())

	return cmd
}

func KBIngestCmd() *cobra.Command {
	var (
		title  string
		url    string
		fromS3 bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <project-id> <path>",
		Short: "Ingest a document into a project's knowledge base",
		Long: "Ingest a local text file, or with --from-s3 every object under the " +
			"given key prefix in the configured bucket. Each document becomes one " +
			"source split into retrieval chunks.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKBIngest(args[0], args[1], title, url, fromS3)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Source title (defaults to the file name)")
	cmd.Flags().StringVar(&url, "url", "", "Source URL shown in citations")
	cmd.Flags().BoolVar(&fromS3, "from-s3", false, "Treat <path> as an object key prefix in the configured S3 bucket")

	return cmd
}

func runKBIngest(projectID, path, title, url string, fromS3 bool) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := newKnowledgeService(pool)

	if fromS3 {
		return ingestFromS3(ctx, svc, projectID, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	source, err := svc.CreateSource(ctx, service.CreateSourceInput{
		ProjectID: projectID,
		Title:     title,
		URL:       url,
		Text:      string(data),
	})
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", path, err)
	}

	fmt.Printf("Ingested %q as source %s\n", source.Title, source.ID)
	return nil
}

func ingestFromS3(ctx context.Context, svc *service.KnowledgeService, projectID, prefix string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasS3() {
		return fmt.Errorf("S3 is not configured (CAREBOT_S3_ENDPOINT, CAREBOT_S3_ACCESS_KEY_ID, CAREBOT_S3_SECRET_ACCESS_KEY)")
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}

	keys, err := s3Client.ListObjects(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list objects under %q: %w", prefix, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no objects found under %q in bucket %s", prefix, cfg.S3Bucket)
	}

	for _, key := range keys {
		data, err := s3Client.FetchObject(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", key, err)
		}

		title := strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
		source, err := svc.CreateSource(ctx, service.CreateSourceInput{
			ProjectID: projectID,
			Title:     title,
			Text:      string(data),
		})
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", key, err)
		}
		fmt.Printf("Ingested %q as source %s\n", key, source.ID)
	}

	fmt.Printf("Ingested %d sources\n", len(keys))
	return nil
}

func KBListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's knowledge sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runKBList(args[0], outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runKBList(projectID, outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	sources, err := newKnowledgeService(pool).ListSources(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(sources))
		for i, s := range sources {
			data[i] = map[string]interface{}{
				"id":          s.ID,
				"title":       s.Title,
				"url":         s.URL,
				"chunk_count": s.ChunkCount,
				"updated_at":  s.UpdatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(sources) == 0 {
			fmt.Println("No sources found")
			return nil
		}
		fmt.Println("Sources:")
		for _, s := range sources {
			fmt.Printf("  %s: %s (%d chunks, updated %s)\n", s.ID, s.Title, s.ChunkCount, s.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func KBDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id> <source-id>",
		Short: "Delete a knowledge source and its chunks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := newKnowledgeService(pool).DeleteSource(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete source: %w", err)
			}
			fmt.Printf("Source %s deleted\n", args[1])
			return nil
		},
	}
}

func newKnowledgeService(pool *pgxpool.Pool) *service.KnowledgeService {
	return service.NewKnowledgeService(
		repository.NewKnowledgeSourceRepository(pool),
		repository.NewTxRunner(pool),
	)
}
