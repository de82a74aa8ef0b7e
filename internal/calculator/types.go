package calculator

// KeysRequest is the JSON body for POST /calculator/evaluate and
// POST /calculator/sessions/{id}/keys. Each entry is a key name ("7", "+",
// "sqrt") or a run of single-character keys ("12+3=").
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// KeyStep records the display right after one key press.
type KeyStep struct {
	Key     string `json:"key"`
	Display string `json:"display"`
	State   string `json:"state"`
}

// SessionResponse describes a session's current display.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Display   string `json:"display"`
	State     string `json:"state"`
	Error     bool   `json:"error"`
}

// KeysResponse is the JSON response for key presses. SessionID is empty for
// stateless evaluation.
type KeysResponse struct {
	SessionID string    `json:"session_id,omitempty"`
	Steps     []KeyStep `json:"steps"`
	Display   string    `json:"display"`
	State     string    `json:"state"`
	Error     bool      `json:"error"`
}
