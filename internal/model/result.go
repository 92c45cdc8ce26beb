package model

import (
	"math"
	"time"
)

const MaxScore = 10.0

// UserResult is the immutable outcome of a finished interview.
type UserResult struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         string    `json:"user_id" gorm:"not null;index"`
	SessionID      string    `json:"session_id" gorm:"not null;uniqueIndex"`
	TechStack      TechStack `json:"tech_stack" gorm:"type:varchar(64);not null;index"`
	Score          float64   `json:"score" gorm:"not null"`
	Feedback       string    `json:"feedback" gorm:"type:text"`
	TotalQuestions int       `json:"total_questions" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

func (UserResult) TableName() string { return "user_results" }

// CorrectAnswers is derived from the score, it is not stored.
func (r UserResult) CorrectAnswers() int {
	return DeriveCorrectAnswers(r.Score, r.TotalQuestions)
}

func DeriveCorrectAnswers(score float64, totalQuestions int) int {
	if totalQuestions <= 0 {
		return 0
	}
	correct := int(math.Round(ClampScore(score) / MaxScore * float64(totalQuestions)))
	if correct > totalQuestions {
		return totalQuestions
	}
	return correct
}

func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
