package model

import "testing"

func TestStageStatusIsFinished(t *testing.T) {
	tests := []struct {
		status   StageStatus
		finished bool
	}{
		{StagePending, false},
		{StageRunning, false},
		{StageCompleted, true},
		{StageSkipped, true},
		{StageError, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.IsFinished(); got != tt.finished {
				t.Errorf("IsFinished() = %v, want %v", got, tt.finished)
			}
		})
	}
}
