package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"file-appender/internal/event"
	"file-appender/internal/interpolate"
	"file-appender/internal/storage"
)

const fileAppenderDescription = `The File Appender Agent is used to append text to files in cloud storage. It takes a file path and writes a line (or lines) of text to the end of the file at that path.

* ` + "`path`" + `: Relative path to the file within the storage account. The file must already exist.

The incoming event payload needs to have a ` + "`text`" + ` key. For example:

    {
      "text": "line1\nline2"
    }
`

// FileAppender appends the "text" of every received event to a remote file.
//
// Each event costs one full download and one full upload of the file. The
// pair is not atomic at the storage service: a writer that uploads between
// our download and upload is silently overwritten.
type FileAppender struct {
	id     string
	name   string
	client storage.Client
	interp *interpolate.Interpolator

	mu      sync.RWMutex
	options map[string]any
}

// DefaultOptions returns the options a new file appender starts with.
func DefaultOptions() map[string]any {
	return map[string]any{
		OptionPath:                  "",
		OptionExpectedReceivePeriod: "2",
	}
}

// NewFileAppender validates opts and returns a ready agent. Nil opts means
// DefaultOptions, which do not validate until a path is set.
func NewFileAppender(id, name string, client storage.Client, opts map[string]any) (*FileAppender, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	a := &FileAppender{
		id:     id,
		name:   name,
		client: client,
		interp: interpolate.New(),
	}
	if err := a.SetOptions(opts); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *FileAppender) ID() string { return a.id }
func (a *FileAppender) Name() string { return a.name }
func (a *FileAppender) Description() string { return fileAppenderDescription }
func (a *FileAppender) CanReceiveBulk() bool { return false }

func (a *FileAppender) Options() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneOptions(a.options)
}

// SetOptions replaces the options if they validate; otherwise the old ones stay.
func (a *FileAppender) SetOptions(opts map[string]any) error {
	if err := ValidateFileAppenderOptions(opts); err != nil {
		return err
	}
	a.mu.Lock()
	a.options = cloneOptions(opts)
	a.mu.Unlock()
	return nil
}

// ValidateFileAppenderOptions checks raw (not yet interpolated) options.
func ValidateFileAppenderOptions(opts map[string]any) error {
	var msgs []string
	if !present(opts[OptionPath]) {
		msgs = append(msgs, ErrPathRequired)
	}
	period := opts[OptionExpectedReceivePeriod]
	if !present(period) || toInt(period) <= 0 {
		msgs = append(msgs, ErrPeriodRequired)
	}
	if len(msgs) > 0 {
		return &ConfigurationError{Messages: msgs}
	}
	return nil
}

// Resolve interpolates the options into a concrete Config.
func (a *FileAppender) Resolve() (Config, error) {
	resolved, err := a.interp.Options(a.Options(), a.bindings())
	if err != nil {
		return Config{}, err
	}
	return Config{
		Path:                      strings.TrimSpace(toString(resolved[OptionPath])),
		ExpectedReceivePeriodDays: toInt(resolved[OptionExpectedReceivePeriod]),
	}, nil
}

func (a *FileAppender) bindings() map[string]any {
	return map[string]any{
		"agent": map[string]any{
			"id":   a.id,
			"name": a.name,
		},
	}
}

// Working is true when an event arrived within the expected period and no
// error was logged recently.
func (a *FileAppender) Working(hc HealthContext, now time.Time) bool {
	cfg, err := a.Resolve()
	if err != nil {
		return false
	}
	return receivedWithin(hc, cfg.ExpectedReceivePeriodDays, now)
}

// Receive appends the text of each event, in order. The first failure stops
// the batch; events before it stay appended.
func (a *FileAppender) Receive(ctx context.Context, events []event.Event) error {
	cfg, err := a.Resolve()
	if err != nil {
		return fmt.Errorf("resolve options: %w", err)
	}
	if cfg.Path == "" {
		return &ConfigurationError{Messages: []string{ErrPathRequired}}
	}
	for _, ev := range events {
		text := toString(ev.Payload["text"])

		contents, err := a.client.Download(ctx, cfg.Path)
		if err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
		contents = AppendLine(contents, text)

		if err := a.client.Upload(ctx, cfg.Path, contents); err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
		log.Printf("📝 [%s] appended %d bytes to %s", a.id, len(text), cfg.Path)
	}
	return nil
}

// AppendLine returns contents with text added as new line(s). Non-empty
// contents get a trailing newline if missing, and so does text.
func AppendLine(contents, text string) string {
	var b strings.Builder
	b.Grow(len(contents) + len(text) + 2)
	b.WriteString(contents)
	if contents != "" && !strings.HasSuffix(contents, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}
