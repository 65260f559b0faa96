package analysis

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voiceguard-backend/internal/config"
)

// Variant selects which analyzer script is run
type Variant string

const (
	VariantBinary   Variant = "binary"   // real/synthetic classification
	VariantTempered Variant = "tempered" // tamper detection with segment labels
)

var scriptNames = map[Variant]string{
	VariantBinary:   "analyze.py",
	VariantTempered: "analyze_tempered.py",
}

// Verdict is the analyzer's structured result. Raw preserves the exact JSON
// object the script emitted, so the HTTP edge can relay it untouched.
type Verdict struct {
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Prediction float64 `json:"prediction,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Error reports a failed analysis: process launch failure, non-zero exit,
// timeout, or unparseable output. Output carries the captured diagnostic
// lines with filesystem paths scrubbed.
type Error struct {
	Reason string
	Output string
}

func (e *Error) Error() string {
	return e.Reason
}

// Gateway mediates between the HTTP edge and the external analyzer scripts.
// Concurrent invocations are capped by a semaphore and every child process
// runs under a deadline, so a hung analyzer cannot pin a request forever.
type Gateway struct {
	python    string
	scriptDir string
	uploadDir string
	timeout   time.Duration
	sem       chan struct{}
}

// NewGateway creates a gateway from the process configuration
func NewGateway(cfg config.Config) *Gateway {
	return &Gateway{
		python:    cfg.PythonBin,
		scriptDir: cfg.ScriptDir,
		uploadDir: cfg.UploadDir,
		timeout:   cfg.AnalysisTimeout,
		sem:       make(chan struct{}, cfg.MaxAnalyses),
	}
}

// Analyze writes the uploaded audio to a temporary file, runs the analyzer
// for the given variant and returns its verdict. The temporary file is
// removed whether or not the analysis succeeds.
func (g *Gateway) Analyze(ctx context.Context, filename string, audio io.Reader, variant Variant) (*Verdict, error) {
	return g.AnalyzeStream(ctx, filename, audio, variant, nil)
}

// AnalyzeStream is Analyze with a live feed: every diagnostic line the
// analyzer prints is passed to onLine (already scrubbed), from a single
// goroutine, before the final verdict or error is returned.
func (g *Gateway) AnalyzeStream(ctx context.Context, filename string, audio io.Reader, variant Variant, onLine func(string)) (*Verdict, error) {
	script, ok := scriptNames[variant]
	if !ok {
		return nil, fmt.Errorf("unknown analysis variant %q", variant)
	}

	// Bound concurrent analyzer processes
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-g.sem }()

	path, err := g.saveUpload(filename, audio)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	return g.run(ctx, filepath.Join(g.scriptDir, script), path, onLine)
}

// saveUpload stores the audio under a random name, keeping the extension so
// the analyzer can sniff the container format.
func (g *Gateway) saveUpload(filename string, audio io.Reader) (string, error) {
	if err := os.MkdirAll(g.uploadDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(g.uploadDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

type outputLine struct {
	text   string
	stdout bool
}

func (g *Gateway) run(ctx context.Context, script, audioPath string, onLine func(string)) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.python, script, audioPath)
	// Don't let Wait hang on pipes held open by analyzer children
	cmd.WaitDelay = 5 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, &Error{Reason: "failed to start analyzer process"}
	}

	lineCh := make(chan outputLine, 64)
	var wg sync.WaitGroup
	wg.Add(2)
	go scanInto(stdout, true, lineCh, &wg)
	go scanInto(stderr, false, lineCh, &wg)
	go func() {
		wg.Wait()
		close(lineCh)
	}()

	// Single consumer: lines reach onLine in arrival order, one at a time
	var stdoutLines, allLines []string
	for line := range lineCh {
		if line.stdout {
			stdoutLines = append(stdoutLines, line.text)
		}
		allLines = append(allLines, line.text)
		if onLine != nil {
			onLine(g.scrub(line.text, audioPath))
		}
	}

	waitErr := cmd.Wait()
	diagnostics := g.scrub(strings.Join(allLines, "\n"), audioPath)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, &Error{
			Reason: fmt.Sprintf("analysis timed out after %s", g.timeout),
			Output: diagnostics,
		}
	}
	if waitErr != nil {
		return nil, &Error{
			Reason: "analyzer process failed: " + waitErr.Error(),
			Output: diagnostics,
		}
	}

	return parseVerdict(stdoutLines, diagnostics)
}

func scanInto(r io.Reader, stdout bool, ch chan<- outputLine, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ch <- outputLine{text: scanner.Text(), stdout: stdout}
	}
}

// parseVerdict extracts the verdict from the analyzer's stdout: the last
// line that is syntactically a JSON object. The scripts print progress
// diagnostics before the result, so earlier lines are ignored.
func parseVerdict(stdoutLines []string, diagnostics string) (*Verdict, error) {
	for i := len(stdoutLines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(stdoutLines[i])
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}

		verdict := &Verdict{}
		if err := json.Unmarshal([]byte(line), verdict); err != nil {
			return nil, &Error{
				Reason: "analyzer produced a malformed result",
				Output: diagnostics,
			}
		}
		verdict.Raw = json.RawMessage(line)
		return verdict, nil
	}

	return nil, &Error{
		Reason: "analyzer produced no result",
		Output: diagnostics,
	}
}

// scrub removes filesystem paths from analyzer output before it can reach a
// client
func (g *Gateway) scrub(s, audioPath string) string {
	s = strings.ReplaceAll(s, audioPath, filepath.Base(audioPath))
	if g.uploadDir != "" && g.uploadDir != "." {
		s = strings.ReplaceAll(s, g.uploadDir, "")
	}
	return s
}
