package channel

import "encoding/json"

// Event channel methods
const (
	MethodListen = "listen"
	MethodCancel = "cancel"
)

// Error codes a Host answers with
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeInternal   = "internal"
)

// Request is a command sent to a Host
type Request struct {
	ID        int64                  `json:"id"`
	Channel   string                 `json:"channel"`
	Method    string                 `json:"method"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// WireError is a failed command
type WireError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Envelope is every message a Host sends: the answer to request ID, or an advertising
// state event when Event is set
type Envelope struct {
	ID             int64           `json:"id,omitempty"`
	Channel        string          `json:"channel,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *WireError      `json:"error,omitempty"`
	NotImplemented bool            `json:"notImplemented,omitempty"`
	Event          *bool           `json:"event,omitempty"`
}

// IsEvent reports whether e is an advertising state event
func (e Envelope) IsEvent() bool { return e.Event != nil }
