package cli

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// newSpinner returns an indeterminate progress spinner on stderr. When stderr
// is not a terminal the spinner renders nowhere.
func newSpinner(description string) *progressbar.ProgressBar {
	var w io.Writer = os.Stderr
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		w = io.Discard
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
	)
}

// withSpinner runs fn while a spinner ticks on stderr.
func withSpinner(description string, fn func() error) error {
	bar := newSpinner(description)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	err := fn()
	close(done)
	_ = bar.Finish()
	return err
}
