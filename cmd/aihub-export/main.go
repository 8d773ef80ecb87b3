package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/aihub-tools/aihub-export/pkg/cli"
	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var mainLog = logger.New("main:main")

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Validate and export AIHub workflows from ComfyUI snapshots",
	Long: `Validate and export AIHub workflows from ComfyUI snapshots.

A workflow snapshot is the node graph of a ComfyUI workflow built with the AIHub
nodes. This tool checks it against the AIHub workflow rules and the model catalog
of the server, and publishes valid workflows to the server's AIHub registry.

Configuration is read from flags, AIHUB_* environment variables (a .env file is
loaded first when present) and .aihub-export.yaml in the working directory or $HOME.

Examples:
  ` + constants.CLIName + ` validate workflows/           # Validate every snapshot in a directory
  ` + constants.CLIName + ` export workflow.json          # Validate and export one workflow
  ` + constants.CLIName + ` catalog                       # List the models available on the server`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = cli.NewVersionCommand()

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "workflow", Title: "Workflow Commands:"},
		&cobra.Group{ID: "utilities", Title: "Utilities:"},
	)

	cli.AddConfigFlags(rootCmd)

	validateCmd := cli.NewValidateCommand()
	validateCmd.GroupID = "workflow"
	exportCmd := cli.NewExportCommand()
	exportCmd.GroupID = "workflow"
	localeCmd := cli.NewLocaleCommand()
	localeCmd.GroupID = "workflow"

	catalogCmd := cli.NewCatalogCommand()
	catalogCmd.GroupID = "utilities"
	mcpServerCmd := cli.NewMCPServerCommand()
	mcpServerCmd.GroupID = "utilities"

	rootCmd.AddCommand(validateCmd, exportCmd, localeCmd, catalogCmd, mcpServerCmd, versionCmd)
	rootCmd.Version = constants.Version
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Failed to load .env: %v", err)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mainLog.Printf("Starting %s %s", constants.CLIName, constants.Version)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}
