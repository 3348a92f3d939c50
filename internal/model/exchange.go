package model

import "time"

// Exchange is one question/answer round trip handled by the backend.
type Exchange struct {
	ID        string    `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Error     string    `json:"error,omitempty" db:"error"`
	Provider  string    `json:"provider" db:"provider"`
	Model     string    `json:"model" db:"model"`
	LatencyMS int64     `json:"latencyMs" db:"latency_ms"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Succeeded reports whether the exchange produced an answer.
func (e Exchange) Succeeded() bool {
	return e.Error == "" && e.Answer != ""
}
