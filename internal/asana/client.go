package asana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://app.asana.com/api/1.0"

// pageLimit is the page size requested from every paginated endpoint.
const pageLimit = 20

// ErrMissing marks a 404 from the API. Only user lookups tolerate it.
var ErrMissing = errors.New("resource not found")

// Config holds the authentication and connection settings for the Asana API.
type Config struct {
	// Token is a Personal Access Token.
	Token string
	// BaseURL overrides the production API root (used by tests).
	BaseURL string
	// RequestDelay is the minimum spacing between requests.
	RequestDelay time.Duration
}

// Client is a rate-limited client for the Asana REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a new Asana client based on the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 500 * time.Millisecond
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// throttle enforces the minimum request spacing across goroutines.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Trace().Dur("wait", wait).Msg("Throttling Asana request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	c.throttle()

	reqURL := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, params.Encode())
	log.Debug().Str("url", reqURL).Msg("Asana GET")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read Asana response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, ErrMissing
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("Asana authentication failed (%d); check the access token", resp.StatusCode)
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				return nil, fmt.Errorf("Asana rate limit exceeded (429), retry after %s seconds", retryAfter)
			}
			return nil, fmt.Errorf("Asana rate limit exceeded (429)")
		default:
			return nil, fmt.Errorf("Asana API returned status %d for %s: %s", resp.StatusCode, path, body)
		}
	}

	return body, nil
}

// envelope is the single-resource response container.
type envelope[T any] struct {
	Data T `json:"data"`
}

// page is the paginated response container.
type page[T any] struct {
	Data     []T `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

// getOne fetches and unwraps a single resource.
func getOne[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var env envelope[T]
	body, err := c.get(ctx, path, params)
	if err != nil {
		return env.Data, err
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env.Data, fmt.Errorf("decode Asana response for %s: %w", path, err)
	}
	return env.Data, nil
}

// getPages follows offset pagination until the last page.
func getPages[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	var items []T
	offset := ""
	for {
		pageParams := url.Values{}
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams.Set("limit", fmt.Sprintf("%d", pageLimit))
		if offset != "" {
			pageParams.Set("offset", offset)
		}

		body, err := c.get(ctx, path, pageParams)
		if err != nil {
			return nil, err
		}
		var pg page[T]
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, fmt.Errorf("decode Asana page for %s: %w", path, err)
		}
		items = append(items, pg.Data...)

		if pg.NextPage == nil {
			return items, nil
		}
		offset = pg.NextPage.Offset
	}
}

// GetProject fetches one project's name and creation time.
func (c *Client) GetProject(ctx context.Context, projectGID string) (Project, error) {
	params := url.Values{"opt_fields": {"this.name,this.created_at"}}
	return getOne[Project](ctx, c, "/projects/"+projectGID, params)
}

// GetProjectSections fetches all sections of a project.
func (c *Client) GetProjectSections(ctx context.Context, projectGID string) (ProjectSections, error) {
	params := url.Values{"opt_fields": {"this.name"}}
	sections, err := getPages[Section](ctx, c, fmt.Sprintf("/projects/%s/sections", projectGID), params)
	if err != nil {
		return ProjectSections{}, err
	}
	return ProjectSections{ProjectGID: projectGID, Sections: sections}, nil
}

// GetProjectTaskGIDs fetches the gids of all tasks in a project that are
// incomplete or were completed since the given time.
func (c *Client) GetProjectTaskGIDs(ctx context.Context, projectGID string, completedSince time.Time) (ProjectTaskGIDs, error) {
	params := url.Values{
		"project":         {projectGID},
		"completed_since": {completedSince.UTC().Format(time.RFC3339)},
		"opt_fields":      {"this.gid"},
	}
	refs, err := getPages[ResourceRef](ctx, c, "/tasks", params)
	if err != nil {
		return ProjectTaskGIDs{}, err
	}
	gids := make([]string, len(refs))
	for i, ref := range refs {
		gids[i] = ref.GID
	}
	return ProjectTaskGIDs{ProjectGID: projectGID, TaskGIDs: gids}, nil
}

// GetTask fetches one task with its memberships.
func (c *Client) GetTask(ctx context.Context, taskGID string) (Task, error) {
	params := url.Values{
		"opt_fields": {"this.(name|created_at|completed|completed_at),this.assignee.gid,this.memberships.section.gid"},
	}
	return getOne[Task](ctx, c, "/tasks/"+taskGID, params)
}

// GetTaskStories fetches a task's full activity log.
func (c *Client) GetTaskStories(ctx context.Context, taskGID string) (TaskStories, error) {
	params := url.Values{"opt_fields": {"this.(created_at|resource_subtype|text)"}}
	stories, err := getPages[Story](ctx, c, fmt.Sprintf("/tasks/%s/stories", taskGID), params)
	if err != nil {
		return TaskStories{}, err
	}
	return TaskStories{TaskGID: taskGID, Stories: stories}, nil
}

// GetUser fetches one user. Deleted or deprovisioned accounts come back 404
// from the API; those resolve to a placeholder so task assignees always join.
func (c *Client) GetUser(ctx context.Context, userGID string) (User, error) {
	params := url.Values{"opt_fields": {"this.(name|email)"}}
	user, err := getOne[User](ctx, c, "/users/"+userGID, params)
	if errors.Is(err, ErrMissing) {
		log.Warn().Str("user", userGID).Msg("User not found, substituting placeholder")
		return MissingUser(userGID), nil
	}
	if err != nil {
		return User{}, err
	}
	user.GID = userGID
	return user, nil
}
