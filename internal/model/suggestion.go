package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserSuggestion records what the candidate should study next.
type UserSuggestion struct {
	ID               uint                        `gorm:"primarykey" json:"id"`
	UserID           string                      `json:"user_id" gorm:"not null;index"`
	SessionID        string                      `json:"session_id" gorm:"not null;index"`
	TechStack        TechStack                   `json:"tech_stack" gorm:"type:varchar(64);not null;index"`
	MissedTopics     datatypes.JSONSlice[string] `json:"missed_topics"`
	ImprovementAreas string                      `json:"improvement_areas" gorm:"type:text"`
	CreatedAt        time.Time                   `json:"created_at" gorm:"index"`
}

func (UserSuggestion) TableName() string { return "user_suggestions" }
