package probe

import (
	"encoding/json"

	"github.com/hamed0406/timetablesvc/internal/transport"
)

// Definition is one configured probe against a dependency.
type Definition struct {
	Title       string
	Description string
	Target      transport.Request
	Check       CheckPolicy // nil behaves as NoCheck
}

// Result is the outcome of a single probe.
//
// Exactly one of Status and Error is set. StatusCode is 0 when no response
// was received. ResponseData holds the upstream payload only when the probe
// failed after a response arrived.
type Result struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	URL          string          `json:"url"`
	Status       string          `json:"status,omitempty"`
	StatusCode   int             `json:"statusCode,omitempty"`
	Error        string          `json:"error,omitempty"`
	ResponseData json.RawMessage `json:"responseData,omitempty"`
}

// Failed reports whether the probe ended in an error.
func (r Result) Failed() bool { return r.Error != "" }

// rawPayload keeps a JSON body as-is and quotes anything else.
func rawPayload(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	b, _ := json.Marshal(string(body))
	return b
}
