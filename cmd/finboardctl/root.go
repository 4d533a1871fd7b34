package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"finboard/internal/cli"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/services"
)

// app carries the opened ledger between the root hooks and the
// subcommands. Tests inject ledger and dashboard directly.
type app struct {
	ledger     *ledger.Ledger
	dashboard  *services.DashboardService
	stack      *cli.Stack
	stopEvents func()
	out        io.Writer
	jsonOut    bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "finboardctl",
		Short: "Manage the finboard ledger from the command line",
		Long: `Record income, expenses and monthly budgets and print the dashboard
views. The data backend is configured with the same environment variables
as the API server (DATA_BACKEND, DATA_DIR, SQLITE_DB_PATH, DATABASE_URL).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print JSON instead of tables")

	root.AddCommand(newTxCmd(a), newBudgetCmd(a), newReportCmd(a))
	return root
}

func (a *app) open(ctx context.Context) error {
	if a.ledger != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	// Command output goes to stdout; keep logs on stderr and quiet.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, os.Stderr).WithComponent(log.ComponentCLI)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	stack, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	a.stack = stack
	a.ledger = stack.Ledger

	// Publish changes like the API does, so the worker and the API hear
	// about writes made here.
	client, err := cli.ConnectAMQP(cfg, logger)
	if err != nil {
		logger.Warn("Failed to connect to AMQP, changes will not be published", log.FieldError, err)
	} else if client != nil {
		stop := a.startEvents(client, logger)
		a.stopEvents = func() {
			stop()
			client.Close()
		}
	}
	a.dashboard = services.NewDashboardService(stack.Ledger, cfg.AnalyticsOptions(),
		services.WithViewCache(nil),
		services.WithDashboardLogger(logger))
	return nil
}

// startEvents forwards the ledger's changes to pub in the background. The
// returned func detaches and blocks until queued changes are published.
func (a *app) startEvents(pub services.ChangePublisher, logger *log.Logger) func() {
	notifier := services.NewChangeNotifier(pub, logger)
	notifier.Attach(a.ledger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = notifier.Run(ctx)
	}()
	return func() {
		notifier.Detach()
		cancel()
		<-done
	}
}

func (a *app) close() error {
	if a.stopEvents != nil {
		a.stopEvents()
		a.stopEvents = nil
	}
	if a.stack == nil {
		return nil
	}
	err := a.stack.Close()
	a.stack = nil
	return err
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
