package stats

import (
	"fmt"
	"regexp"
)

// SectionChangedSubtype tags the only story subtype that carries a workflow
// transition.
const SectionChangedSubtype = "section_changed"

// sectionChangedRE matches the narrative text Asana writes for a section
// move. Section names cannot contain a double quote, the project name runs
// to the end of the line.
var sectionChangedRE = regexp.MustCompile(`^moved this Task from "([^"]+?)" to "([^"]+?)" in (.+)$`)

// Transition is the structured form of one section-change story.
type Transition struct {
	From    string
	To      string
	Project string
}

// ParseTransition extracts the (from, to, project) triple from a
// section-change story text. A non-match is an upstream format violation:
// the caller must treat it as fatal, not skip it, because it means the
// exported text grammar changed and any report built from it would be
// incomplete.
func ParseTransition(text string) (Transition, error) {
	m := sectionChangedRE.FindStringSubmatch(text)
	if m == nil {
		return Transition{}, fmt.Errorf("section-change text does not match expected pattern: %q", text)
	}
	return Transition{From: m[1], To: m[2], Project: m[3]}, nil
}
