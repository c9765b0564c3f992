package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timesheet struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Description string    `gorm:"size:255;not null" json:"description"`
	Hours       float64   `gorm:"not null" json:"hours"`
	WorkDate    time.Time `gorm:"index;not null" json:"work_date"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TaskID      uuid.UUID `gorm:"type:uuid;index;not null" json:"task_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var errTimesheetHours = errors.New("timesheet hours must be greater than zero")

func (t *Timesheet) BeforeSave(*gorm.DB) error {
	if t.Hours <= 0 {
		return errTimesheetHours
	}
	return nil
}

func (t *Timesheet) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.WorkDate.IsZero() {
		t.WorkDate = time.Now().UTC()
	}
	return nil
}
