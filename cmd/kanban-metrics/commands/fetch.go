package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"kanban-metrics/internal/asana"
	"kanban-metrics/internal/snapshot"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	tokenFile  string
	outputFile string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Retrieve the full dataset for all configured projects",
	Long: `Fetches every configured project's metadata, sections, tasks and activity
logs from the Asana API, writes the dataset as a JSON snapshot file, and
archives it in the local snapshot store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := appCfg.Token
		if tokenFile != "" {
			raw, err := os.ReadFile(tokenFile)
			if err != nil {
				return fmt.Errorf("read token file %s: %w", tokenFile, err)
			}
			token = strings.TrimSpace(string(raw))
		}
		if token == "" {
			return fmt.Errorf("no access token: set ASANA_TOKEN or pass --token-file")
		}

		client := asana.NewClient(asana.Config{
			Token:        token,
			RequestDelay: appCfg.RequestDelay,
		})

		// Stable request order keeps snapshots reproducible.
		labels := make([]string, 0, len(reportCfg.Projects))
		for label := range reportCfg.Projects {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		requests := make([]asana.ProjectRequest, 0, len(labels))
		for _, label := range labels {
			pc := reportCfg.Projects[label]
			requests = append(requests, asana.ProjectRequest{GID: pc.GID, Since: pc.Horizon})
		}

		data, err := asana.FetchData(cmd.Context(), client, requests)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}
		if err := os.WriteFile(outputFile, payload, 0644); err != nil {
			return fmt.Errorf("write %s: %w", outputFile, err)
		}
		log.Info().Str("path", outputFile).Int("bytes", len(payload)).Msg("Wrote dataset snapshot")

		store, err := snapshot.Open(appCfg.SnapshotDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := store.Save(payload, time.Now())
		if err != nil {
			return err
		}
		log.Info().Str("run", runID).Str("db", appCfg.SnapshotDB).Msg("Archived fetch run")

		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&tokenFile, "token-file", "t", "", "path of a file containing an Asana Personal Access Token")
	fetchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "asana_data.json", "output file (JSON dataset)")
	rootCmd.AddCommand(fetchCmd)
}
