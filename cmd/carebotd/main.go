package main

import (
	"fmt"
	"os"

	"github.com/attica-health/carebot/internal/cli"
	"github.com/attica-health/carebot/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carebotd",
		Short: "Carebot daemon and CLI",
		Long:  "Carebot daemon for running the assistant API server and managing projects and knowledge bases",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ProjectCmd())
	rootCmd.AddCommand(admin.KBCmd())
	rootCmd.AddCommand(admin.SelfcheckCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
