package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	gorm.Model

	ExternalTeamID string  `gorm:"uniqueIndex;not null"` // PagerDuty team ID
	Name           string  `gorm:"not null"`
	Summary        string
	Alias          *string `gorm:"uniqueIndex"`

	// Exclusive upper bound through which incidents have been synced
	LastChecked time.Time `gorm:"not null"`

	// Relationships
	Incidents []Incident `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
