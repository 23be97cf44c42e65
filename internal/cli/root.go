package cli

import (
	"os"

	"github.com/spf13/cobra"

	"buste/internal/amqp"
	"buste/internal/config"
	"buste/internal/log"
	"buste/internal/services"
	"buste/internal/storage"
)

var dbPathFlag string

// NewRootCmd creates the top-level "buste" command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "buste",
		Short: "Envelope-method budget tracker",
		Long: "Buste manages budget envelopes: money is allocated into named envelopes\n" +
			"with a monthly funding policy, and spending draws an envelope's balance down.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&dbPathFlag, "db", "", "SQLite database path (default: $SQLITE_DB_PATH or ./data/buste.db)")

	root.AddCommand(newAddCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newSpendCmd())
	root.AddCommand(newDepositCmd())
	root.AddCommand(newArchiveCmd())
	root.AddCommand(newSyncFundsCmd())

	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles everything a subcommand needs.
type app struct {
	cfg     *config.Config
	repo    *storage.SQLiteRepository
	service *services.EnvelopeService
	sync    *services.FundingSynchronizer
	amqp    *amqp.Client
}

// newApp bootstraps logging, config, storage and the optional publisher.
func newApp() *app {
	LoadEnvFile()
	logger := SetupLogger(log.ComponentCLI)
	cfg := LoadAndValidateConfig(logger)
	if dbPathFlag != "" {
		cfg.SQLiteDBPath = dbPathFlag
	}

	repo := InitSQLite(logger, cfg.SQLiteDBPath)
	client := InitPublisher(logger, cfg)

	var publisher services.EventPublisher
	if client != nil {
		publisher = client
	}

	return &app{
		cfg:     cfg,
		repo:    repo,
		service: services.NewEnvelopeService(repo, publisher),
		sync:    services.NewFundingSynchronizer(repo, publisher, services.SystemClock{}),
		amqp:    client,
	}
}

func (a *app) close() {
	if a.amqp != nil {
		a.amqp.Close()
	}
	a.repo.Close()
}
