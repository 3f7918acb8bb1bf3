package stats

import (
	"fmt"
	"sort"

	"kanban-metrics/internal/asana"
	"kanban-metrics/internal/config"

	"github.com/rs/zerolog/log"
)

// BuildReport runs the full pipeline for every configured project: timeline
// reconstruction over the whole dataset, then one aggregation pass per
// project. Projects are processed in label order so the output is
// deterministic. Either every configured project produces its full period
// sequence or the run fails; there is no partial report.
func BuildReport(cfg *config.ReportConfig, data *asana.Data) (Report, error) {
	timelines, err := BuildTimelines(data)
	if err != nil {
		return Report{}, err
	}

	gidToName := make(map[string]string, len(data.Projects))
	for _, p := range data.Projects {
		gidToName[p.GID] = p.Name
	}

	labels := make([]string, 0, len(cfg.Projects))
	for label := range cfg.Projects {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var report Report
	for _, label := range labels {
		pc := cfg.Projects[label]
		pname, ok := gidToName[pc.GID]
		if !ok {
			return Report{}, fmt.Errorf("project %q (gid %s) not present in dataset", label, pc.GID)
		}

		log.Info().Str("label", label).Str("project", pname).Msg("Aggregating project")

		counts, durations := Aggregate(timelines[pname], pc.Horizon, pc.CFDStates, pc.DoneStates)
		report.Projects = append(report.Projects, ProjectReport{
			Label: label,
			Name:  pname,
			CFD: CFD{
				CFDStates:  pc.CFDStates,
				DoneStates: pc.DoneStates,
				Counts:     counts,
				Durations:  durations,
			},
		})
	}

	return report, nil
}
