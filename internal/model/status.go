package model

// StageStatus represents the status of a pipeline stage
type StageStatus string

const (
	// StagePending means the stage is queued but not started
	StagePending StageStatus = "Pending"

	// StageRunning means the stage is in progress
	StageRunning StageStatus = "Running"

	// StageCompleted means the stage finished successfully
	StageCompleted StageStatus = "Completed"

	// StageSkipped means the stage was not requested for this run
	StageSkipped StageStatus = "Skipped"

	// StageError means the stage failed with an error
	StageError StageStatus = "Error"
)

// String returns the string representation of StageStatus
func (ss StageStatus) String() string {
	return string(ss)
}

// IsFinished returns true if the stage is in a terminal state
func (ss StageStatus) IsFinished() bool {
	return ss == StageCompleted || ss == StageSkipped || ss == StageError
}
