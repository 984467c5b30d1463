package admin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/attica-health/carebot/internal/config"
	"github.com/attica-health/carebot/internal/database"
	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/i18n"
	"github.com/attica-health/carebot/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Long:  "Create and list projects (tenants) and manage their origin allowlists",
	}

	cmd.AddCommand(ProjectCreateCmd())
	cmd.AddCommand(ProjectListCmd())
	cmd.AddCommand(ProjectAddOriginCmd())

	return cmd
}

func ProjectCreateCmd() *cobra.Command {
	var (
		locale     string
		disclaimer string
		persona    string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Long:  "Create a new project with a freshly generated public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runProjectCreate(args[0], locale, disclaimer, persona, outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&locale, "locale", "uk", "Default reply locale (uk, ru or en)")
	cmd.Flags().StringVar(&disclaimer, "disclaimer", "", "Disclaimer template, may contain {{disclaimer}}")
	cmd.Flags().StringVar(&persona, "persona", "", "Project persona prepended to the assistant prompt")

	return cmd
}

func runProjectCreate(name, locale, disclaimer, persona, outputFormat string) error {
	ctx := context.Background()

	if !i18n.IsLocale(locale) {
		return fmt.Errorf("unsupported locale %q (expected uk, ru or en)", locale)
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	key, err := newPublicKey()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	p := &domain.Project{
		ID:                 uuid.NewString(),
		Name:               name,
		PublicKey:          key,
		AllowedOrigins:     []string{},
		LocaleDefault:      locale,
		DisclaimerTemplate: disclaimer,
		SystemPrompt:       persona,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := domain.ValidateProject(p); err != nil {
		return err
	}

	if err := repository.NewProjectRepository(pool).Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         p.ID,
			"name":       p.Name,
			"public_key": p.PublicKey,
			"locale":     p.LocaleDefault,
			"created_at": p.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Project created: %s (%s)\n", p.Name, p.ID)
		fmt.Printf("Public key: %s\n", p.PublicKey)
	}

	return nil
}

func ProjectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runProjectList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runProjectList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	projects, err := repository.NewProjectRepository(pool).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(projects))
		for i, p := range projects {
			data[i] = map[string]interface{}{
				"id":              p.ID,
				"name":            p.Name,
				"public_key":      p.PublicKey,
				"locale":          p.LocaleDefault,
				"allowed_origins": p.AllowedOrigins,
				"created_at":      p.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(projects) == 0 {
			fmt.Println("No projects found")
			return nil
		}
		fmt.Println("Projects:")
		for _, p := range projects {
			origins := "any (non-production)"
			if len(p.AllowedOrigins) > 0 {
				origins = strings.Join(p.AllowedOrigins, ", ")
			}
			fmt.Printf("  %s: %s key=%s locale=%s origins=%s\n", p.ID, p.Name, p.PublicKey, p.LocaleDefault, origins)
		}
	}

	return nil
}

func ProjectAddOriginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-origin <project-id> <origin>",
		Short: "Allow a browser origin for a project",
		Long:  "Append an origin (scheme://host[:port]) to the project's allowlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := getDBPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.NewProjectRepository(pool).AddOrigin(ctx, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to add origin: %w", err)
			}
			fmt.Printf("Origin %s allowed for project %s\n", args[1], args[0])
			return nil
		},
	}
}

func newPublicKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate public key: %w", err)
	}
	return "pk_" + hex.EncodeToString(buf), nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return database.NewPool(ctx, cfg.DatabaseURL)
}
