// Package browser drives a real Chrome instance for web automation tasks
// and Codex prompt submission. Each run launches its own browser; Cleanup
// removes stray processes and profile locks between retries.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"testops/internal/core/ports"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

type Runner struct {
	headless     bool
	profileDir   string
	navTimeout   time.Duration
	codexBaseURL string
	logger       *zap.Logger
}

var _ ports.AutomationRunner = (*Runner)(nil)

func NewRunner(headless bool, profileDir string, navTimeout time.Duration, codexBaseURL string, logger *zap.Logger) *Runner {
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	return &Runner{
		headless:     headless,
		profileDir:   profileDir,
		navTimeout:   navTimeout,
		codexBaseURL: codexBaseURL,
		logger:       logger,
	}
}

// launch starts a fresh Chrome and connects to it. The persistent profile
// directory keeps login sessions across runs.
func (r *Runner) launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Headless(r.headless).
		NoSandbox(true)
	if r.profileDir != "" {
		l = l.UserDataDir(r.profileDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("connect chrome: %w", err)
	}
	return browser, l, nil
}

type taskLogEntry struct {
	Timestamp string `json:"timestamp"`
	Step      string `json:"step"`
	Detail    string `json:"detail,omitempty"`
}

// RunWebTask opens the task URL, waits for the page to settle and records
// each step as a JSON line in the task's working directory. The returned
// string summarizes what the page showed.
func (r *Runner) RunWebTask(ctx context.Context, task ports.WebTask) (string, error) {
	browser, l, err := r.launch()
	if err != nil {
		return "", err
	}
	defer l.Cleanup()
	defer browser.Close()

	logPath := ""
	var steps []taskLogEntry
	record := func(step, detail string) {
		steps = append(steps, taskLogEntry{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Step:      step,
			Detail:    detail,
		})
	}
	record("start", task.Name)

	runCtx, cancel := context.WithTimeout(ctx, r.navTimeout)
	defer cancel()

	page, err := browser.Context(runCtx).Page(proto.TargetCreateTarget{URL: task.URL})
	if err != nil {
		return "", fmt.Errorf("open page %s: %w", task.URL, err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load %s: %w", task.URL, err)
	}
	record("navigate", task.URL)

	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	record("loaded", info.Title)

	body, err := page.Element("body")
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}
	text, err := body.Text()
	if err != nil {
		return "", fmt.Errorf("read page text: %w", err)
	}

	for _, line := range task.Context {
		record("context", line)
	}
	record("done", "")

	if task.WorkDir != "" {
		if err := os.MkdirAll(task.WorkDir, 0o755); err == nil {
			logPath = filepath.Join(task.WorkDir, "task_log.jsonl")
			if err := writeJSONLines(logPath, steps); err != nil {
				r.logger.Warn("could not write task log", zap.String("path", logPath), zap.Error(err))
			}
		}
	}

	summary := fmt.Sprintf("visited %s (%s), captured %d characters", task.URL, info.Title, len(text))
	r.logger.Info("web task finished",
		zap.String("task", task.Name),
		zap.String("url", task.URL),
		zap.String("log", logPath))
	return summary, nil
}

func writeJSONLines(path string, entries []taskLogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}

// SubmitPrompt types the prompt into the Codex composer, picks the
// repository when one is given and clicks submit. The profile directory
// must already hold a logged-in session.
func (r *Runner) SubmitPrompt(ctx context.Context, prompt, repository string) (map[string]any, error) {
	browser, l, err := r.launch()
	if err != nil {
		return nil, err
	}
	defer l.Cleanup()
	defer browser.Close()

	runCtx, cancel := context.WithTimeout(ctx, r.navTimeout)
	defer cancel()

	page, err := browser.Context(runCtx).Page(proto.TargetCreateTarget{URL: r.codexBaseURL})
	if err != nil {
		return nil, fmt.Errorf("open codex: %w", err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("codex load: %w", err)
	}

	composer, err := page.Element("textarea, div[contenteditable='true']")
	if err != nil {
		return nil, fmt.Errorf("codex composer not found, session may be logged out: %w", err)
	}
	if err := composer.Input(prompt); err != nil {
		return nil, fmt.Errorf("type prompt: %w", err)
	}

	if repository != "" {
		if err := r.selectRepository(page, repository); err != nil {
			return nil, err
		}
	}

	submit, err := page.Element("button[type='submit'], button[data-testid='send-button']")
	if err != nil {
		return nil, fmt.Errorf("submit button not found: %w", err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("click submit: %w", err)
	}

	// Give the task page a moment to appear so we can report its URL.
	page.WaitRequestIdle(2*time.Second, nil, nil, nil)()

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}

	r.logger.Info("prompt submitted",
		zap.String("repository", repository),
		zap.String("task_url", info.URL))
	return map[string]any{
		"submitted":  true,
		"repository": repository,
		"task_url":   info.URL,
	}, nil
}

func (r *Runner) selectRepository(page *rod.Page, repository string) error {
	picker, err := page.Element("button[aria-haspopup='listbox'], [data-testid='repo-picker']")
	if err != nil {
		return fmt.Errorf("repository picker not found: %w", err)
	}
	if err := picker.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("open repository picker: %w", err)
	}

	option, err := page.ElementR("[role='option'], li", repository)
	if err != nil {
		return fmt.Errorf("repository %q not in picker: %w", repository, err)
	}
	if err := option.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("select repository %q: %w", repository, err)
	}
	return nil
}

// ListRepositories opens the Codex repository picker and reads the
// available entries.
func (r *Runner) ListRepositories(ctx context.Context) ([]string, error) {
	browser, l, err := r.launch()
	if err != nil {
		return nil, err
	}
	defer l.Cleanup()
	defer browser.Close()

	runCtx, cancel := context.WithTimeout(ctx, r.navTimeout)
	defer cancel()

	page, err := browser.Context(runCtx).Page(proto.TargetCreateTarget{URL: r.codexBaseURL})
	if err != nil {
		return nil, fmt.Errorf("open codex: %w", err)
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("codex load: %w", err)
	}

	picker, err := page.Element("button[aria-haspopup='listbox'], [data-testid='repo-picker']")
	if err != nil {
		return nil, fmt.Errorf("repository picker not found, session may be logged out: %w", err)
	}
	if err := picker.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("open repository picker: %w", err)
	}

	options, err := page.Elements("[role='option']")
	if err != nil {
		return nil, fmt.Errorf("read repository options: %w", err)
	}

	var repos []string
	for _, option := range options {
		text, err := option.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			repos = append(repos, text)
		}
	}
	return repos, nil
}

// Cleanup kills Chrome processes bound to the runner's profile and removes
// the profile's singleton locks so the next launch starts clean. Called
// between retry attempts.
func (r *Runner) Cleanup() error {
	if r.profileDir == "" {
		return nil
	}
	// Ignore pkill's exit status; no matching process is fine.
	_ = exec.Command("pkill", "-f", r.profileDir).Run()

	for _, lock := range []string{"SingletonLock", "SingletonSocket", "SingletonCookie"} {
		path := filepath.Join(r.profileDir, lock)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}
