package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// SetText writes text to the system clipboard. Failures are reported to
// the caller and surfaced in the status bar, never fatal.
func SetText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
