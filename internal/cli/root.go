// Package cli builds the trident command tree. Commands talk to the
// backend exclusively through the domain services; flags and environment
// only decide how those services are wired.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"trident/internal/api"
	"trident/internal/auth"
	"trident/internal/cache"
	"trident/internal/config"
	"trident/internal/domain/services"
	"trident/internal/service/ingest"
	"trident/internal/service/messages"
)

// app carries the wiring shared by every subcommand. It is populated once
// by the root command's PersistentPreRunE, so subcommands deal only with
// services.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *auth.FileStore

	// Persistent flag values
	server  string
	output  string
	timeout time.Duration

	messages services.MessageService
	ingest   services.IngestService
}

// init resolves the effective configuration and constructs the services
func (a *app) init(cmd *cobra.Command, args []string) error {
	store, err := auth.NewFileStore()
	if err != nil {
		return fmt.Errorf("failed to open config store: %w", err)
	}
	a.store = store

	// Server address precedence: flag, environment, saved config, default
	if a.server == "" {
		a.server = a.cfg.ServerURL
	}
	if a.server == "" {
		a.server = store.ServerURL()
	}
	if a.server == "" {
		a.server = config.DefaultServerURL
	}

	// A token from the environment overrides the stored one
	var tokens auth.TokenProvider = store
	if a.cfg.Token != "" {
		tokens = auth.StaticProvider(a.cfg.Token)
	}

	timeout := a.timeout
	if timeout <= 0 {
		timeout = a.cfg.Timeout
	}

	client := api.NewClientWithConfig(a.server, tokens, timeout, a.logger)
	results := cache.New()
	a.messages = messages.NewService(client, results, a.logger)
	a.ingest = ingest.NewService(client, tokens, a.logger)

	a.logger.Debug("client initialized",
		"server", a.server,
		"timeout", timeout,
	)
	return nil
}

// NewRootCommand builds the trident command tree
func NewRootCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	root := &cobra.Command{
		Use:   "trident",
		Short: "Client for the Trident conversation backend",
		Long: `Trident talks to the conversation backend: it sends messages into the
three message stores, browses conversations and uploads documents for
ingestion.

The backend address comes from --server, the TRIDENT_SERVER_URL
environment variable or the saved configuration, in that order.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVarP(&a.server, "server", "s", "", "backend address (default "+config.DefaultServerURL+")")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-request timeout (default "+config.DefaultTimeout.String()+")")

	root.AddCommand(
		newSendCommand(a),
		newMessagesCommand(a),
		newUploadCommand(a),
		newAuthCommand(a),
		newServerCommand(a),
	)

	return root
}
