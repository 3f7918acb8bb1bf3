package asana

import (
	"fmt"
	"time"
)

// Data is the fully materialized dataset produced by a fetch run.
// The JSON layout is the snapshot format consumed by the report command,
// so field tags are part of the on-disk contract.
type Data struct {
	Users           []User            `json:"users"`
	Projects        []Project         `json:"projects"`
	ProjectSections []ProjectSections `json:"project_sections"`
	ProjectTaskGIDs []ProjectTaskGIDs `json:"project_task_gids"`
	Tasks           []Task            `json:"tasks"`
	TaskStories     []TaskStories     `json:"task_stories"`
}

// Project is a board the configured labels map onto. Project names are the
// join key between section definitions and story text.
type Project struct {
	GID       string    `json:"gid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Section is a named workflow state within one project.
type Section struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// ProjectSections lists the sections belonging to one project.
type ProjectSections struct {
	ProjectGID string    `json:"project_gid"`
	Sections   []Section `json:"sections"`
}

// ProjectTaskGIDs lists the tasks fetched for one project.
type ProjectTaskGIDs struct {
	ProjectGID string   `json:"project_gid"`
	TaskGIDs   []string `json:"task_gids"`
}

// ResourceRef is a compact reference carrying only a gid.
type ResourceRef struct {
	GID string `json:"gid"`
}

// Task is a work item together with its current section memberships.
// Memberships list one map per project the task belongs to, keyed by
// resource kind ("section"), including projects outside the configuration.
type Task struct {
	GID         string                   `json:"gid"`
	Name        string                   `json:"name"`
	CreatedAt   time.Time                `json:"created_at"`
	Completed   bool                     `json:"completed"`
	CompletedAt *time.Time               `json:"completed_at"`
	Assignee    *ResourceRef             `json:"assignee"`
	Memberships []map[string]ResourceRef `json:"memberships"`
}

// Story is one activity-log record attached to a task. Only stories with
// ResourceSubtype "section_changed" carry workflow transitions.
type Story struct {
	CreatedAt       time.Time `json:"created_at"`
	ResourceSubtype string    `json:"resource_subtype"`
	Text            string    `json:"text"`
}

// TaskStories binds a task to its full activity log.
type TaskStories struct {
	TaskGID string  `json:"task_gid"`
	Stories []Story `json:"stories"`
}

// User is an assignee record.
type User struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MissingUser synthesizes a placeholder for an assignee the API no longer
// resolves (deprovisioned accounts return 404).
func MissingUser(gid string) User {
	return User{
		GID:   gid,
		Name:  fmt.Sprintf("MissingUser(%s)", gid),
		Email: fmt.Sprintf("%s@nowhere.com", gid),
	}
}
