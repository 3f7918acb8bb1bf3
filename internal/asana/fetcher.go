package asana

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency caps the in-flight API calls; the client's throttle still
// spaces individual requests.
const fetchConcurrency = 4

// ProjectRequest names one project to retrieve and the completed-since
// horizon bounding its task list.
type ProjectRequest struct {
	GID   string
	Since time.Time
}

// FetchData retrieves the complete dataset for the requested projects:
// project metadata, sections, task gids, every task with its activity log,
// and every referenced assignee. Results are placed by request index, so the
// snapshot layout is deterministic for a given configuration.
func FetchData(ctx context.Context, c *Client, requests []ProjectRequest) (*Data, error) {
	data := &Data{
		Projects:        make([]Project, len(requests)),
		ProjectSections: make([]ProjectSections, len(requests)),
		ProjectTaskGIDs: make([]ProjectTaskGIDs, len(requests)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			p, err := c.GetProject(gctx, req.GID)
			if err != nil {
				return err
			}
			data.Projects[i] = p
			return nil
		})
		g.Go(func() error {
			ps, err := c.GetProjectSections(gctx, req.GID)
			if err != nil {
				return err
			}
			data.ProjectSections[i] = ps
			return nil
		})
		g.Go(func() error {
			ptg, err := c.GetProjectTaskGIDs(gctx, req.GID, req.Since)
			if err != nil {
				return err
			}
			data.ProjectTaskGIDs[i] = ptg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var taskGIDs []string
	for _, ptg := range data.ProjectTaskGIDs {
		taskGIDs = append(taskGIDs, ptg.TaskGIDs...)
	}
	log.Info().Int("projects", len(requests)).Int("tasks", len(taskGIDs)).Msg("Fetching tasks and activity logs")

	data.Tasks = make([]Task, len(taskGIDs))
	data.TaskStories = make([]TaskStories, len(taskGIDs))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, gid := range taskGIDs {
		i, gid := i, gid
		g.Go(func() error {
			t, err := c.GetTask(gctx, gid)
			if err != nil {
				return err
			}
			data.Tasks[i] = t
			return nil
		})
		g.Go(func() error {
			ts, err := c.GetTaskStories(gctx, gid)
			if err != nil {
				return err
			}
			data.TaskStories[i] = ts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userSet := make(map[string]bool)
	for _, t := range data.Tasks {
		if t.Assignee != nil {
			userSet[t.Assignee.GID] = true
		}
	}
	userGIDs := make([]string, 0, len(userSet))
	for gid := range userSet {
		userGIDs = append(userGIDs, gid)
	}
	sort.Strings(userGIDs)

	data.Users = make([]User, len(userGIDs))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, gid := range userGIDs {
		i, gid := i, gid
		g.Go(func() error {
			u, err := c.GetUser(gctx, gid)
			if err != nil {
				return err
			}
			data.Users[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}
