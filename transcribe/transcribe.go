// Package transcribe runs speech-to-text over extracted audio tracks. The
// model itself is a black box reached through the whisper CLI; this package
// owns configuration, invocation, result parsing, and word normalization.
package transcribe

import (
	"encoding/json"
	"fmt"
)

// ModelSizes lists the model identifiers the runner accepts.
var ModelSizes = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large",
}

// Config describes one transcription run. Device is the execution-context
// parameter selecting where inference happens: empty for the runtime
// default, "cpu"/"cuda" for a backend, or a GPU index to pin the subprocess
// to one card. The serialized form is persisted with every transcription so
// results stay attributable to the settings that produced them.
type Config struct {
	Model    string `json:"model"`
	Device   string `json:"device,omitempty"`
	ModelDir string `json:"model_dir,omitempty"`
	Language string `json:"language,omitempty"`
	TempDir  string `json:"-"`
}

// Validate checks the model identifier against the known set.
func (c Config) Validate() error {
	for _, size := range ModelSizes {
		if c.Model == size {
			return nil
		}
	}
	return fmt.Errorf("unknown model %q (expected one of %v)", c.Model, ModelSizes)
}

// JSON returns the serialized config stored on transcription rows.
func (c Config) JSON() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to serialize transcription config: %w", err)
	}
	return string(data), nil
}

// Result is the parsed output of one transcription run.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Segment is one transcribed utterance with its timing and the sampling
// temperature that produced it.
type Segment struct {
	Text        string  `json:"text"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Temperature float64 `json:"temperature"`
	Words       []Word  `json:"words"`
}

// Word is one recognized word with timing and the model's confidence.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}
