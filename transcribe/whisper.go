package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner invokes the whisper CLI. One Runner is constructed per batch and
// reused for every video; the CLI caches model weights under
// Config.ModelDir, so only the first invocation pays the download.
type Runner struct {
	cfg    Config
	logger *zap.Logger
}

// NewRunner validates cfg and checks that the whisper binary is reachable.
func NewRunner(cfg Config, logger *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath("whisper"); err != nil {
		return nil, fmt.Errorf("whisper binary not found on PATH: %w", err)
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Transcribe runs the model over audioPath and parses the JSON report the
// CLI writes. Scratch output lands in a per-call directory under the
// configured temp root and is removed before returning.
func (r *Runner) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	tempRoot := r.cfg.TempDir
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	workDir := filepath.Join(tempRoot, "transcribe-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcription work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	args := []string{
		audioPath,
		"--model", r.cfg.Model,
		"--output_format", "json",
		"--output_dir", workDir,
		"--word_timestamps", "True",
		"--verbose", "False",
	}
	if r.cfg.ModelDir != "" {
		args = append(args, "--model_dir", r.cfg.ModelDir)
	}
	if r.cfg.Language != "" {
		args = append(args, "--language", r.cfg.Language)
	}

	env := os.Environ()
	switch r.cfg.Device {
	case "":
	case "cpu", "cuda":
		args = append(args, "--device", r.cfg.Device)
	default:
		// a bare index pins the subprocess to one GPU
		env = append(env, "CUDA_VISIBLE_DEVICES="+r.cfg.Device)
		args = append(args, "--device", "cuda")
	}

	cmd := exec.CommandContext(ctx, "whisper", args...)
	cmd.Env = env

	r.logger.Debug("invoking whisper",
		zap.String("audio", audioPath),
		zap.String("model", r.cfg.Model),
		zap.String("device", r.cfg.Device))

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper failed for %s: %w (output: %s)", audioPath, err, string(output))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	reportPath := filepath.Join(workDir, base+".json")
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("whisper produced no report for %s: %w", audioPath, err)
	}

	result, err := ParseResult(data)
	if err != nil {
		return nil, fmt.Errorf("whisper report for %s: %w", audioPath, err)
	}
	return result, nil
}
