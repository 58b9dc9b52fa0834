package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Incident struct {
	gorm.Model

	// "{provider_incident_id}_{team_external_id}" - PagerDuty incident IDs
	// are not unique across teams
	ExternalIncidentID string `gorm:"uniqueIndex;not null"`

	Title       string `gorm:"not null"`
	Description string
	Summary     string

	Status  string `gorm:"not null"` // "triggered", "acknowledged", "resolved", ...
	Urgency string `gorm:"not null"` // "low" or "high"

	// nil until a human has triaged the incident
	Actionable *bool

	// Provider payload as received, kept for debugging
	RawPayload datatypes.JSON

	TeamID       uint  `gorm:"not null;index"`
	AnnotationID *uint

	// Relationships
	Team       Team        `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Annotation *Annotation `gorm:"foreignKey:AnnotationID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
