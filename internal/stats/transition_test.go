package stats

import "testing"

func TestParseTransition(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Transition
	}{
		{
			"Simple",
			`moved this Task from "To Do" to "In Progress" in Platform Team`,
			Transition{From: "To Do", To: "In Progress", Project: "Platform Team"},
		},
		{
			"ProjectNameWithSpaces",
			`moved this Task from "Doing" to "Done" in Q1 2024 Roadmap`,
			Transition{From: "Doing", To: "Done", Project: "Q1 2024 Roadmap"},
		},
		{
			"StateNamesWithPunctuation",
			`moved this Task from "Blocked / Waiting" to "Review (PR)" in Ops`,
			Transition{From: "Blocked / Waiting", To: "Review (PR)", Project: "Ops"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTransition(tt.text)
			if err != nil {
				t.Fatalf("ParseTransition(%q) returned error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseTransition(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTransitionRejectsUnknownText(t *testing.T) {
	texts := []string{
		"added this Task to Platform Team",
		`moved this Task from "A" in Platform Team`,
		"completed this task",
		"",
	}
	for _, text := range texts {
		if _, err := ParseTransition(text); err == nil {
			t.Errorf("ParseTransition(%q) succeeded, want error", text)
		}
	}
}
