package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultTagColor = "#3B82F6"

type Tag struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	ColorHex string    `gorm:"size:7;not null;default:'#3B82F6'" json:"color_hex"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.ColorHex == "" {
		t.ColorHex = DefaultTagColor
	}
	return nil
}
