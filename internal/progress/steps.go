// Package progress maps the session status onto the four-step pipeline view
// shown while a video is processing.
package progress

import "github.com/reeldeck/reeldeck-agent/internal/reel"

type StepState string

const (
	StepDone    StepState = "done"
	StepActive  StepState = "active"
	StepPending StepState = "pending"
)

type Step struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	State StepState `json:"state"`
}

var stepDefs = [4]struct {
	key   string
	label string
}{
	{"scan", "Scanning video content"},
	{"download", "Downloading source media"},
	{"crop", "Cropping to vertical 9:16"},
	{"captions", "Generating dynamic captions"},
}

// Steps renders the pipeline view for a status. Steps before the active one
// are done, later ones pending. COMPLETED marks every step done; statuses the
// view does not recognize fall back to the first step so the page always has
// something sensible to draw.
func Steps(status reel.ProcessStatus) []Step {
	if status == reel.StatusCompleted {
		out := make([]Step, len(stepDefs))
		for i, def := range stepDefs {
			out[i] = Step{Key: def.key, Label: def.label, State: StepDone}
		}
		return out
	}

	active := activeIndex(status)
	out := make([]Step, len(stepDefs))
	for i, def := range stepDefs {
		state := StepPending
		switch {
		case i < active:
			state = StepDone
		case i == active:
			state = StepActive
		}
		out[i] = Step{Key: def.key, Label: def.label, State: state}
	}
	return out
}

func activeIndex(status reel.ProcessStatus) int {
	switch status {
	case reel.StatusFetchingMetadata:
		return 0
	case reel.StatusAnalyzing, reel.StatusProcessing:
		return 1
	case reel.StatusReframing:
		return 2
	case reel.StatusGeneratingCaptions:
		return 3
	default:
		return 0
	}
}
