package model

// ChatPath is the endpoint the Ask-AI client posts questions to.
const ChatPath = "/api/ai/chat"

// LegacyAskPath is the endpoint used by earlier clients, which sent
// {question, model} without settings.
//
// Deprecated: the backend only serves ChatPath.
const LegacyAskPath = "/api/v1/ai/ask"

// TestPath answers with a fixed message so clients can check connectivity.
const TestPath = "/api/ai/test"

// HistoryPath lists recent exchanges recorded by the backend.
const HistoryPath = "/api/ai/history"

// AskRequest is what a chat surface hands to the Ask-AI client.
type AskRequest struct {
	// Content is the user's question. The client forwards it as given.
	Content string

	// Model optionally overrides the model from the settings.
	Model string
}

// AskResponse is the decoded body of a successful HTTP exchange.
// A 2xx body may still carry a domain error in Error.
type AskResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

// ChatRequest is the wire body of POST /api/ai/chat.
type ChatRequest struct {
	Question string      `json:"question"`
	Model    string      `json:"model,omitempty"`
	Settings *AISettings `json:"settings,omitempty"`
}

// HistoryResponse is the body of GET /api/ai/history.
type HistoryResponse struct {
	Exchanges []Exchange `json:"exchanges"`
}

// TestResponse is the body of POST /api/ai/test.
type TestResponse struct {
	Message string `json:"message"`
}
