package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskDraft      TaskStatus = "draft"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

type Task struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string       `gorm:"size:300;not null;index" json:"title"`
	Description        *string      `json:"description,omitempty"`
	IsArchived         bool         `gorm:"not null;default:false" json:"is_archived"`
	Status             TaskStatus   `gorm:"size:16;not null;default:draft;index" json:"status"`
	Priority           TaskPriority `gorm:"size:16;not null;default:medium;index" json:"priority"`
	EstimatedHours     *float64     `json:"estimated_hours,omitempty"`
	ActualHours        *float64     `json:"actual_hours,omitempty"`
	ProgressPercentage int          `gorm:"not null;default:0" json:"progress_percentage"`
	DueDate            *time.Time   `json:"due_date,omitempty"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
	OwnerID            uuid.UUID    `gorm:"type:uuid;index;not null" json:"owner_id"`
	Tags               []Tag        `gorm:"many2many:task_tags" json:"tags,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

var (
	errTaskProgressRange = errors.New("progress_percentage must be between 0 and 100")
	errTaskNegativeHours = errors.New("task hours must not be negative")
)

func (t *Task) BeforeSave(*gorm.DB) error {
	if t.ProgressPercentage < 0 || t.ProgressPercentage > 100 {
		return errTaskProgressRange
	}
	if (t.EstimatedHours != nil && *t.EstimatedHours < 0) || (t.ActualHours != nil && *t.ActualHours < 0) {
		return errTaskNegativeHours
	}
	return nil
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
