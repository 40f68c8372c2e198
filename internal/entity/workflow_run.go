package entity

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// RunStatus is the lifecycle state of one workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// WorkflowRun records one execution of a notifier flow for the run history
// API. Step checkpoints live in the workflow engine's store; this row only
// captures the trigger payload and the terminal result.
type WorkflowRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RunID        string         `gorm:"uniqueIndex;not null" json:"run_id"`
	Flow         string         `gorm:"index;not null" json:"flow"`
	Status       RunStatus      `gorm:"not null" json:"status"`
	Payload      datatypes.JSON `json:"payload"`
	Recipients   pq.StringArray `gorm:"type:text[]" json:"recipients"`
	Output       sql.NullString `json:"output"`
	ErrorMessage sql.NullString `json:"error_message"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
}

// TableName specifies the table name for workflow runs.
func (WorkflowRun) TableName() string {
	return "workflow_runs"
}
