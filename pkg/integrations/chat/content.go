package chat

import (
	"encoding/json"
	"strings"
)

// rawContent decodes an OpenAI-style content field, which may be a plain
// string, null, or a list of typed parts ({"type":"text","text":...}).
type rawContent struct {
	text string
}

// Text returns the flattened content.
func (c rawContent) Text() string { return c.text }

// UnmarshalJSON implements json.Unmarshaler.
func (c *rawContent) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		c.text = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.text = s
		return nil
	}

	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &parts); err == nil {
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(p.Text)
		}
		c.text = b.String()
		return nil
	}

	// Unknown shape; keep going with empty content rather than failing the
	// whole response.
	c.text = ""
	return nil
}
