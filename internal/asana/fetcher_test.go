package asana

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestFetchDataAssemblesDataset(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/p1":
			fmt.Fprint(w, `{"data":{"gid":"p1","name":"Platform Team","created_at":"2023-12-01T00:00:00.000Z"}}`)
		case "/projects/p1/sections":
			fmt.Fprint(w, `{"data":[{"gid":"s1","name":"To Do"},{"gid":"s2","name":"Done"}]}`)
		case "/tasks":
			fmt.Fprint(w, `{"data":[{"gid":"t1"},{"gid":"t2"}]}`)
		case "/tasks/t1":
			fmt.Fprint(w, `{"data":{"gid":"t1","name":"First","created_at":"2024-01-01T00:00:00.000Z","assignee":{"gid":"u1"},"memberships":[{"section":{"gid":"s1"}}]}}`)
		case "/tasks/t2":
			fmt.Fprint(w, `{"data":{"gid":"t2","name":"Second","created_at":"2024-01-02T00:00:00.000Z","memberships":[{"section":{"gid":"s2"}}]}}`)
		case "/tasks/t1/stories", "/tasks/t2/stories":
			fmt.Fprint(w, `{"data":[]}`)
		case "/users/u1":
			fmt.Fprint(w, `{"data":{"gid":"u1","name":"Ada","email":"ada@example.com"}}`)
		default:
			http.NotFound(w, r)
		}
	})

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data, err := FetchData(context.Background(), client, []ProjectRequest{{GID: "p1", Since: since}})
	if err != nil {
		t.Fatalf("FetchData returned error: %v", err)
	}

	if len(data.Projects) != 1 || data.Projects[0].Name != "Platform Team" {
		t.Errorf("Projects = %+v", data.Projects)
	}
	if len(data.ProjectSections) != 1 || len(data.ProjectSections[0].Sections) != 2 {
		t.Errorf("ProjectSections = %+v", data.ProjectSections)
	}
	if len(data.ProjectTaskGIDs) != 1 || len(data.ProjectTaskGIDs[0].TaskGIDs) != 2 {
		t.Errorf("ProjectTaskGIDs = %+v", data.ProjectTaskGIDs)
	}

	// Tasks and activity logs land at the same index as their gid.
	if len(data.Tasks) != 2 || data.Tasks[0].GID != "t1" || data.Tasks[1].GID != "t2" {
		t.Errorf("Tasks = %+v, want t1 then t2", data.Tasks)
	}
	if len(data.TaskStories) != 2 || data.TaskStories[0].TaskGID != "t1" || data.TaskStories[1].TaskGID != "t2" {
		t.Errorf("TaskStories = %+v, want t1 then t2", data.TaskStories)
	}

	if len(data.Users) != 1 || data.Users[0].Email != "ada@example.com" {
		t.Errorf("Users = %+v", data.Users)
	}
}

func TestFetchDataPropagatesFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := FetchData(context.Background(), client, []ProjectRequest{{GID: "p1"}})
	if err == nil {
		t.Fatal("Expected error when the API fails, got nil")
	}
}
