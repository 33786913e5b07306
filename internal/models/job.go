package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB custom type for PostgreSQL JSONB
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JobStatus represents the status of a translation job
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// JobTrigger represents what started the job
type JobTrigger string

const (
	TriggerManual    JobTrigger = "MANUAL"
	TriggerScheduled JobTrigger = "SCHEDULED"
)

// JobProgress tracks offer counts for a translation job
type JobProgress struct {
	TotalOffers    int `json:"totalOffers"`
	BuiltOffers    int `json:"builtOffers"`
	ReadyOffers    int `json:"readyOffers"`
	RejectedOffers int `json:"rejectedOffers"`
}

// TranslationJob represents one run of the offer builder over a feed
// for a target marketplace
type TranslationJob struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FeedID        uint      `gorm:"not null;index:idx_translation_jobs_feed" json:"feedId"`
	MarketplaceID uint      `gorm:"not null;index:idx_translation_jobs_marketplace" json:"marketplaceId"`

	Status JobStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_translation_jobs_status" json:"status"`

	Progress JSONB `gorm:"type:jsonb;default:'{\"totalOffers\":0,\"builtOffers\":0,\"readyOffers\":0,\"rejectedOffers\":0}'" json:"progress"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	ErrorMessage string `gorm:"type:text" json:"errorMessage,omitempty"`

	TriggeredBy JobTrigger `gorm:"type:varchar(50);default:'MANUAL'" json:"triggeredBy,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for TranslationJob
func (TranslationJob) TableName() string {
	return "translation_jobs"
}

// GetProgress returns the job progress as a structured object
func (j *TranslationJob) GetProgress() *JobProgress {
	progress := &JobProgress{}
	if j.Progress != nil {
		if v, ok := j.Progress["totalOffers"].(float64); ok {
			progress.TotalOffers = int(v)
		}
		if v, ok := j.Progress["builtOffers"].(float64); ok {
			progress.BuiltOffers = int(v)
		}
		if v, ok := j.Progress["readyOffers"].(float64); ok {
			progress.ReadyOffers = int(v)
		}
		if v, ok := j.Progress["rejectedOffers"].(float64); ok {
			progress.RejectedOffers = int(v)
		}
	}
	return progress
}

// SetProgress sets the job progress from a structured object
func (j *TranslationJob) SetProgress(progress *JobProgress) {
	j.Progress = JSONB{
		"totalOffers":    progress.TotalOffers,
		"builtOffers":    progress.BuiltOffers,
		"readyOffers":    progress.ReadyOffers,
		"rejectedOffers": progress.RejectedOffers,
	}
}
