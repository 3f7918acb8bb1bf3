package commands

import (
	"kanban-metrics/internal/config"
	"kanban-metrics/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose    bool
	configFile string

	appCfg    *config.AppConfig
	reportCfg *config.ReportConfig
)

var rootCmd = &cobra.Command{
	Use:   "kanban-metrics",
	Short: "kanban-metrics builds Cumulative Flow Diagram reports from Asana boards",
	Long: `A reporting tool that scrapes Asana project activity and aggregates it into
weekly Cumulative Flow Diagram tables: per-state task counts, per-state p90
dwell times, and done throughput, rendered as gnuplot data files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		appCfg, err = config.Load()
		if err != nil {
			return err
		}

		reportCfg, err = config.LoadReportConfig(configFile)
		if err != nil {
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Int("projects", len(reportCfg.Projects)).
			Msg("kanban-metrics starting")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", "config.json", "path to the report configuration file")
}
