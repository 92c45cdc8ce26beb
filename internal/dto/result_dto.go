package dto

import "time"

type ResultResponse struct {
	ID             uint      `json:"id"`
	UserID         string    `json:"user_id"`
	SessionID      string    `json:"session_id"`
	TechStack      string    `json:"tech_stack"`
	Score          float64   `json:"score"`
	Feedback       string    `json:"feedback"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	CreatedAt      time.Time `json:"created_at"`
}

type ResultListResponse struct {
	Results []ResultResponse `json:"results"`
	Total   int              `json:"total"`
}

type SuggestionResponse struct {
	ID               uint      `json:"id"`
	UserID           string    `json:"user_id"`
	SessionID        string    `json:"session_id"`
	TechStack        string    `json:"tech_stack"`
	MissedTopics     []string  `json:"missed_topics"`
	ImprovementAreas string    `json:"improvement_areas"`
	CreatedAt        time.Time `json:"created_at"`
}
