package stats

import (
	"fmt"
	"sort"

	"kanban-metrics/internal/asana"

	"github.com/rs/zerolog/log"
)

// datasetIndex holds the join maps derived from one dataset snapshot.
type datasetIndex struct {
	projectNames map[string]bool              // names of all projects in the dataset
	gidToName    map[string]string            // project gid -> project name
	tasks        map[string]asana.Task        // task gid -> task
	storiesFor   map[string][]asana.Story     // task gid -> activity log
	memberships  map[string]map[string]string // task gid -> project name -> current section name
}

func buildIndex(data *asana.Data) (*datasetIndex, error) {
	idx := &datasetIndex{
		projectNames: make(map[string]bool, len(data.Projects)),
		gidToName:    make(map[string]string, len(data.Projects)),
		tasks:        make(map[string]asana.Task, len(data.Tasks)),
		storiesFor:   make(map[string][]asana.Story, len(data.TaskStories)),
		memberships:  make(map[string]map[string]string, len(data.Tasks)),
	}

	for _, p := range data.Projects {
		idx.projectNames[p.Name] = true
		idx.gidToName[p.GID] = p.Name
	}

	sectionName := make(map[string]string)
	sectionProject := make(map[string]string)
	for _, ps := range data.ProjectSections {
		if _, ok := idx.gidToName[ps.ProjectGID]; !ok {
			return nil, fmt.Errorf("sections reference unknown project gid %s", ps.ProjectGID)
		}
		for _, s := range ps.Sections {
			sectionName[s.GID] = s.Name
			sectionProject[s.GID] = ps.ProjectGID
		}
	}

	for _, t := range data.Tasks {
		idx.tasks[t.GID] = t

		current := make(map[string]string)
		for _, m := range t.Memberships {
			ref, ok := m["section"]
			if !ok {
				continue
			}
			// Memberships list sections from every project the task is in,
			// including ones outside the dataset. Only joinable sections count.
			pgid, ok := sectionProject[ref.GID]
			if !ok {
				continue
			}
			current[idx.gidToName[pgid]] = sectionName[ref.GID]
		}
		idx.memberships[t.GID] = current
	}

	for _, ts := range data.TaskStories {
		if _, ok := idx.tasks[ts.TaskGID]; !ok {
			return nil, fmt.Errorf("activity log references unknown task %s", ts.TaskGID)
		}
		idx.storiesFor[ts.TaskGID] = ts.Stories
	}

	return idx, nil
}

// BuildTimelines reconstructs, for every project in the dataset, the
// chronological stream of state-entry events across all of its tasks.
//
// Per task and per project: the first parsed transition synthesizes an
// implicit entry into its from-state at the task's creation time (the only
// evidence of the task's pre-history), and every transition appends an entry
// into its to-state at the story's own time. A task that holds a section in
// a project but never produced a transition there gets a single synthesized
// entry into its current section at creation time. Transitions naming a
// project outside the dataset are dropped; a section-change story whose text
// fails the pattern aborts the run.
func BuildTimelines(data *asana.Data) (map[string][]Event, error) {
	idx, err := buildIndex(data)
	if err != nil {
		return nil, err
	}

	timelines := make(map[string][]Event, len(idx.projectNames))

	for _, task := range data.Tasks {
		taskEvents, err := reconstructTask(idx, task)
		if err != nil {
			return nil, err
		}
		for pname, events := range taskEvents {
			timelines[pname] = append(timelines[pname], events...)
		}
	}

	// The aggregator makes one forward pass, so each project's merged stream
	// must be globally non-decreasing. The sort is stable: ties keep the
	// order tasks contributed them.
	for pname, events := range timelines {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].At.Before(events[j].At)
		})
		timelines[pname] = events
		log.Debug().Str("project", pname).Int("events", len(events)).Msg("Reconstructed timeline")
	}

	return timelines, nil
}

// reconstructTask builds one task's event lists, keyed by project name and
// sorted by timestamp. Histories are reconstructed independently per
// project: transition text naming one project never pollutes another's.
func reconstructTask(idx *datasetIndex, task asana.Task) (map[string][]Event, error) {
	events := make(map[string][]Event)

	for _, story := range idx.storiesFor[task.GID] {
		if story.ResourceSubtype != SectionChangedSubtype {
			continue
		}
		tr, err := ParseTransition(story.Text)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.GID, err)
		}
		if !idx.projectNames[tr.Project] {
			// A move within a project the dataset does not cover.
			continue
		}
		if len(events[tr.Project]) == 0 {
			// First transition seen for this project: the task is presumed
			// to have sat in the from-state since creation.
			events[tr.Project] = append(events[tr.Project], Event{
				At:      task.CreatedAt,
				TaskGID: task.GID,
				State:   tr.From,
			})
		}
		events[tr.Project] = append(events[tr.Project], Event{
			At:      story.CreatedAt,
			TaskGID: task.GID,
			State:   tr.To,
		})
	}

	// Tasks that were created directly into their current section and never
	// moved have no section-change story; synthesize their single entry.
	for pname, sname := range idx.memberships[task.GID] {
		if len(events[pname]) == 0 {
			events[pname] = append(events[pname], Event{
				At:      task.CreatedAt,
				TaskGID: task.GID,
				State:   sname,
			})
		}
	}

	for pname := range events {
		evs := events[pname]
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].At.Before(evs[j].At)
		})
		events[pname] = evs
	}

	return events, nil
}
