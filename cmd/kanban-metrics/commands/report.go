package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"kanban-metrics/internal/asana"
	"kanban-metrics/internal/render"
	"kanban-metrics/internal/snapshot"
	"kanban-metrics/internal/stats"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	inputFile string
	useLatest bool
	outputDir string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate a dataset snapshot into CFD report files",
	Long: `Replays a fetched dataset through the weekly aggregation engine and writes
gnuplot data and script files per configured project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := loadPayload()
		if err != nil {
			return err
		}

		var data asana.Data
		if err := json.Unmarshal(payload, &data); err != nil {
			return fmt.Errorf("decode dataset: %w", err)
		}

		report, err := stats.BuildReport(reportCfg, &data)
		if err != nil {
			return err
		}

		for _, project := range report.Projects {
			if err := render.WriteProject(project, outputDir); err != nil {
				return err
			}
		}

		log.Info().Int("projects", len(report.Projects)).Str("dir", outputDir).Msg("Report complete")
		return nil
	},
}

func loadPayload() ([]byte, error) {
	if useLatest {
		store, err := snapshot.Open(appCfg.SnapshotDB)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		payload, run, err := store.Latest()
		if err != nil {
			return nil, err
		}
		log.Info().Str("run", run.ID).Time("fetchedAt", run.FetchedAt).Msg("Loaded archived dataset")
		return payload, nil
	}

	if inputFile == "" {
		return nil, fmt.Errorf("either --input-file or --latest must be given")
	}
	payload, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", inputFile, err)
	}
	return payload, nil
}

func init() {
	reportCmd.Flags().StringVarP(&inputFile, "input-file", "i", "", "path of a dataset snapshot produced by fetch")
	reportCmd.Flags().BoolVar(&useLatest, "latest", false, "use the most recent archived fetch run")
	reportCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "out", "directory for the generated report files")
	rootCmd.AddCommand(reportCmd)
}
