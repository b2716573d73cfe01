package progress

import (
	"testing"

	"github.com/reeldeck/reeldeck-agent/internal/reel"
)

func states(steps []Step) [4]StepState {
	var out [4]StepState
	for i, s := range steps {
		out[i] = s.State
	}
	return out
}

func TestSteps_PerStatus(t *testing.T) {
	tests := []struct {
		status reel.ProcessStatus
		want   [4]StepState
	}{
		{reel.StatusFetchingMetadata, [4]StepState{StepActive, StepPending, StepPending, StepPending}},
		{reel.StatusAnalyzing, [4]StepState{StepDone, StepActive, StepPending, StepPending}},
		{reel.StatusProcessing, [4]StepState{StepDone, StepActive, StepPending, StepPending}},
		{reel.StatusReframing, [4]StepState{StepDone, StepDone, StepActive, StepPending}},
		{reel.StatusGeneratingCaptions, [4]StepState{StepDone, StepDone, StepDone, StepActive}},
		{reel.StatusCompleted, [4]StepState{StepDone, StepDone, StepDone, StepDone}},
		{reel.StatusIdle, [4]StepState{StepActive, StepPending, StepPending, StepPending}},
		{reel.ProcessStatus("BOGUS"), [4]StepState{StepActive, StepPending, StepPending, StepPending}},
	}

	for _, tc := range tests {
		steps := Steps(tc.status)
		if len(steps) != 4 {
			t.Fatalf("Steps(%s) = %d steps, want 4", tc.status, len(steps))
		}
		if got := states(steps); got != tc.want {
			t.Errorf("Steps(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSteps_LabelsStable(t *testing.T) {
	a := Steps(reel.StatusAnalyzing)
	b := Steps(reel.StatusCompleted)
	for i := range a {
		if a[i].Label != b[i].Label {
			t.Errorf("label[%d] differs across statuses: %q vs %q", i, a[i].Label, b[i].Label)
		}
	}
}
