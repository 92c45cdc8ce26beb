package dto

import "time"

// StartInterviewRequest opens a new interview for a user and tech stack.
type StartInterviewRequest struct {
	UserID       string `json:"user_id" binding:"required"`
	TechStack    string `json:"tech_stack" binding:"required,techstack"`
	AudioEnabled bool   `json:"audio_enabled"`
}

type StartInterviewResponse struct {
	SessionID string  `json:"session_id"`
	Message   string  `json:"message"`
	TechStack string  `json:"tech_stack"`
	AudioURL  *string `json:"audio_url,omitempty"`
	// Question is the bare question text, used for speech synthesis.
	Question string `json:"-"`
}

// SendMessageRequest carries the candidate's answer to the pending question.
type SendMessageRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	UserMessage  string `json:"user_message" binding:"required"`
	AudioEnabled bool   `json:"audio_enabled"`
}

type SendMessageResponse struct {
	AIMessage       string  `json:"ai_message"`
	IsComplete      bool    `json:"is_complete"`
	QuestionNumber  *int    `json:"question_number,omitempty"`
	TotalQuestions  *int    `json:"total_questions,omitempty"`
	AudioURL        *string `json:"audio_url,omitempty"`
	TranscribedText *string `json:"transcribed_text,omitempty"`
	// Question is the bare next question, empty once the interview is complete.
	Question string `json:"-"`
}

type AudioUploadResponse struct {
	Transcription string `json:"transcription"`
	AudioURL      string `json:"audio_url"`
}

type EndInterviewResponse struct {
	SessionID        string    `json:"session_id"`
	Score            float64   `json:"score"`
	Feedback         string    `json:"feedback"`
	MissedTopics     []string  `json:"missed_topics"`
	ImprovementAreas string    `json:"improvement_areas"`
	TotalQuestions   int       `json:"total_questions"`
	CreatedAt        time.Time `json:"created_at"`
}

// InterviewStatusResponse is a read-only snapshot of a live session.
type InterviewStatusResponse struct {
	SessionID       string   `json:"session_id"`
	TechStack       string   `json:"tech_stack"`
	Status          string   `json:"status"`
	CurrentQuestion int      `json:"current_question"`
	TotalQuestions  int      `json:"total_questions"`
	IsComplete      bool     `json:"is_complete"`
	Questions       []string `json:"questions"`
	Answers         []string `json:"answers"`
}
