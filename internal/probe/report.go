package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Report is the combined outcome of one aggregator run.
type Report struct {
	RunID   string
	Results []Result
}

// Healthy is true when no probe failed.
func (r Report) Healthy() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return false
		}
	}
	return true
}

// StatusCode is 200 for a healthy report and 500 otherwise.
func (r Report) StatusCode() int {
	if r.Healthy() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// MarshalJSON encodes the report as the bare result array.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Results == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Results)
}

// WriteText renders one line per probe under an underlined heading:
//
//	✅ Search   - 42 modules
//	❌ Export   - Request failed with status code 502
func (r Report) WriteText(w io.Writer, title string) error {
	pad := 0
	for _, res := range r.Results {
		if n := utf8.RuneCountInString(res.Title); n > pad {
			pad = n
		}
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(title)))
	b.WriteString("\n\n")
	for _, res := range r.Results {
		glyph, text := "✅", res.Status
		if res.Failed() {
			glyph, text = "❌", res.Error
		}
		fmt.Fprintf(&b, "%s %-*s - %s\n", glyph, pad, res.Title, text)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
