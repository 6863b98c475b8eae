package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dealcoach/pkg/config"
	"dealcoach/pkg/flow"
	"dealcoach/pkg/guidance"
	"dealcoach/pkg/llm"
	"dealcoach/pkg/server"
	"dealcoach/pkg/store"
	"dealcoach/pkg/utils"
)

var servePort int

// serveCmd runs the local HTTP/WebSocket API that the companion UI talks to.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP/WebSocket API",
	Long: `Starts the session API on localhost. With a MySQL DSN configured
(config file or DEALCOACH_MYSQL_DSN), sessions survive restarts and the
in-person pack entitlement is read from the database; without one, sessions
live in memory and model-backed guidance is disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.ServerPort = servePort
		}
		logger := utils.GetLogger()

		table, err := loadTaxTable(cfg)
		if err != nil {
			return err
		}

		var (
			sessions     store.Store
			entitlements store.EntitlementStore
		)
		if cfg.MySQLDSN != "" {
			db, err := store.Open(cfg.MySQLDSN)
			if err != nil {
				return fmt.Errorf("opening session store: %w", err)
			}
			defer db.Close()
			if err := store.Migrate(db); err != nil {
				return fmt.Errorf("migrating session store: %w", err)
			}
			sessions = store.NewSessionRepository(db)
			entitlements = store.NewEntitlementRepository(db)
		} else {
			mem := store.NewMemoryStore()
			sessions, entitlements = mem, mem
		}

		var chat guidance.ChatClient
		if cfg.AIEnabled {
			client, err := llm.NewClient(cfg.Model)
			if err != nil {
				fmt.Fprintf(os.Stderr, "model guidance disabled: %v\n", err)
				logger.Logf("serve: model guidance disabled: %v", err)
			} else {
				chat = client
			}
		}

		manager := flow.NewManager(table, logger)
		srv := server.New(manager, sessions, entitlements, chat, cfg.UserID, cfg.ServerPort, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("dealcoach API listening on http://localhost:%d\n", cfg.ServerPort)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
}
