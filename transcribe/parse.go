package transcribe

import (
	"encoding/json"
	"fmt"
)

// ParseResult decodes the JSON report the whisper CLI writes next to its
// other output formats. Segment text is kept verbatim, including the leading
// space the model emits.
func ParseResult(data []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse transcription report: %w", err)
	}
	return &result, nil
}
