package model

import (
	"time"
)

type AnalysisSession struct {
	Id        string    `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	Snapshot  []byte    `gorm:"type:bytea;not null"`
}

func (AnalysisSession) TableName() string {
	return "analysis_sessions"
}
