package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"centre-block/internal/config"
	"centre-block/internal/editor"
	"centre-block/internal/logger"
	"centre-block/internal/services"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	blockID   string
	logFile   string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "centre-editor",
	Short: "Pick the collection centre shown by a block",
	Long: `A terminal editor for a collection centre block. Lists the centres
served by the proxy, previews the selected one and saves the selection to the
block when --block is given.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	cfg := config.Load()

	rootCmd.Flags().StringVarP(&serverURL, "server", "s", cfg.EditorServerURL,
		"base URL of the centre block server")
	rootCmd.Flags().StringVarP(&blockID, "block", "b", "",
		"block id whose selection is edited (omit to browse without saving)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "",
		"write logs to this file instead of discarding them")
	rootCmd.Flags().DurationVar(&timeout, "timeout", cfg.ProxyTimeout,
		"timeout for each request to the server")
}

func run(cmd *cobra.Command, args []string) error {
	if timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}

	logr, err := logger.NewFile(logFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logr.Sync()

	base := strings.TrimRight(serverURL, "/")
	directory := services.NewDirectoryClient(base+"/awanui/v1/centres", "centre-editor/1.0", timeout, logr.Logger)
	resolver := services.NewResolver(directory)

	var (
		store     editor.SelectionStore
		selection string
	)
	if blockID != "" {
		client := editor.NewBlockClient(base, blockID, timeout)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		selection, err = client.LoadSelection(ctx)
		cancel()
		if err != nil {
			return err
		}
		store = client
	}

	logr.Info("editor started", zap.String("server", base), zap.String("block", blockID))

	model := editor.New(directory, resolver, store, selection, logr.Logger)
	p := tea.NewProgram(editor.NewApp(model), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
