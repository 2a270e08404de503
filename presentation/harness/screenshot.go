package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"e2e_automation/domain/interfaces"
	"e2e_automation/infrastructure/logging"
)

// Outcome is the part of testing.TB the failure hook reads
type Outcome interface {
	Name() string
	Failed() bool
}

// CaptureOnFailure - writes <dir>/<test>_<timestamp>.png when the test failed and returns its path
func CaptureOnFailure(ctx context.Context, t Outcome, target interfaces.Screenshottable, dir string, now func() time.Time) (string, error) {
	if !t.Failed() {
		return "", nil
	}
	if now == nil {
		now = time.Now
	}

	data, err := target.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to take screenshot: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", logging.SafeName(t.Name()), now().Format(logging.TimestampLayout)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}
