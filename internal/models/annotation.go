package models

import "gorm.io/gorm"

type Annotation struct {
	gorm.Model

	Summary string `gorm:"not null"`
}
