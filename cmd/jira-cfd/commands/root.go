package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jira-cfd/internal/config"
	"jira-cfd/internal/eventlog"
	"jira-cfd/internal/extract"
	"jira-cfd/internal/jira"
	"jira-cfd/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "jira-cfd",
	Short: "jira-cfd builds cumulative flow diagrams from Jira status histories",
	Long: `Reconstructs, from the status changes of Jira issues, how many items were in each
status on every calendar day, and exports the result as CSV, XLSX, JSON or an HTML chart.
The same reconstruction is offered to assistants as an MCP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("dataPath", cfg.DataPath).
			Msg("jira-cfd starting")
		return nil
	},
}

// Execute runs the root command, canceling its context on interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// newProvider wires the history cache. Jira is only connected when its
// settings are complete, so cached sources work offline.
func newProvider() *eventlog.LogProvider {
	if err := cfg.Jira.Validate(); err != nil {
		log.Debug().Err(err).Msg("Jira not configured, serving cached sources only")
		return newProviderWith(nil)
	}
	return newProviderWith(extract.NewCollector(jira.NewClient(cfg.Jira), extract.Options{
		InitialStatus: cfg.Workflow.InitialStatus,
		Statuses:      cfg.Workflow.Statuses,
		Workers:       cfg.ChangelogWorkers,
	}))
}

func newProviderWith(collector eventlog.Collector) *eventlog.LogProvider {
	return eventlog.NewLogProvider(collector, eventlog.NewEventStore(), cfg.CacheDir)
}

// resolveSource picks the cache ID for a run: the explicit source, else one
// derived from the query.
func resolveSource(source, jql string) string {
	if source != "" {
		return source
	}
	return eventlog.SourceID(jql)
}
