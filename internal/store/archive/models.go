package archive

import (
	"time"

	"gorm.io/datatypes"
)

type sessionModel struct {
	ID            string               `gorm:"column:id;primaryKey;size:36"`
	Question      string               `gorm:"column:question"`
	Model         string               `gorm:"column:model"`
	SummaryStatus string               `gorm:"column:summary_status;size:16"`
	Summary       string               `gorm:"column:summary"`
	Dissent       datatypes.JSON       `gorm:"column:dissent"`
	SummaryError  string               `gorm:"column:summary_error"`
	Usage         datatypes.JSON       `gorm:"column:usage"`
	Cost          datatypes.JSON       `gorm:"column:cost"`
	AdvisorCount  int                  `gorm:"column:advisor_count"`
	FailedCount   int                  `gorm:"column:failed_count"`
	StartedAt     time.Time            `gorm:"column:started_at;index"`
	DurationMS    int64                `gorm:"column:duration_ms"`
	CreatedAt     time.Time            `gorm:"column:created_at"`
	Advisors      []advisorResultModel `gorm:"foreignKey:SessionID;references:ID"`
}

func (sessionModel) TableName() string { return "sessions" }

type advisorResultModel struct {
	ID          uint           `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID   string         `gorm:"column:session_id;index;size:36"`
	Position    int            `gorm:"column:position"`
	PersonaID   string         `gorm:"column:persona_id"`
	DisplayName string         `gorm:"column:display_name"`
	Output      string         `gorm:"column:output"`
	Scratchpad  string         `gorm:"column:scratchpad"`
	Exemplars   datatypes.JSON `gorm:"column:exemplars"`
	Model       string         `gorm:"column:model"`
	Usage       datatypes.JSON `gorm:"column:usage"`
	ElapsedMS   int64          `gorm:"column:elapsed_ms"`
	Error       string         `gorm:"column:error"`
}

func (advisorResultModel) TableName() string { return "advisor_results" }
