package domain

import "time"

// RunStatus represents the status of a publish run.
// Values include RunStatusRunning, RunStatusCompleted, RunStatusCancelled, and RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// PublishRun is one read, process and write cycle over a sheet.
type PublishRun struct {
	ID         string     `gorm:"type:text;primaryKey" json:"id"`
	SheetPath  string     `gorm:"type:text;not null;index" json:"sheet_path"`
	SheetName  string     `gorm:"type:text" json:"sheet_name"`
	Schedule   string     `gorm:"type:text" json:"schedule"`
	Simulate   bool       `json:"simulate"`
	Status     RunStatus  `gorm:"type:text;index;default:running" json:"status"`
	TotalRows  int        `gorm:"default:0" json:"total_rows"`
	Uploaded   int        `gorm:"default:0" json:"uploaded"`
	Simulated  int        `gorm:"default:0" json:"simulated"`
	Missing    int        `gorm:"default:0" json:"missing"`
	Failed     int        `gorm:"default:0" json:"failed"`
	Skipped    int        `gorm:"default:0" json:"skipped"`
	NextSlot   int        `gorm:"default:0" json:"next_slot"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the database table name for PublishRun.
func (PublishRun) TableName() string {
	return "publish_runs"
}
