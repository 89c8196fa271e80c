package models

import "time"

type PostingHistory struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	Platform     string    `db:"platform" json:"platform"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Outcome is the result of one platform invocation.
type Outcome struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func Succeeded(response string) Outcome {
	return Outcome{Success: true, Response: response}
}

func Failed(err error) Outcome {
	return Outcome{Success: false, Error: err.Error()}
}

// ExecutionResult is what a single execution of a scheduled post produced.
type ExecutionResult struct {
	PostID  int64              `json:"post_id"`
	Status  string             `json:"status"`
	Success bool               `json:"success"`
	Results map[string]Outcome `json:"results"`
}
