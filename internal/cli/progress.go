package cli

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// spinner shows an indeterminate progress indicator while a run waits on
// the checker and the reasoning service.
type spinner struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	once sync.Once
	done sync.WaitGroup
}

// startSpinner starts a spinner on w. A nil spinner is returned when
// disabled; Stop on it is a no-op.
func startSpinner(w io.Writer, description string, enabled bool) *spinner {
	if !enabled {
		return nil
	}

	s := &spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
		stop: make(chan struct{}),
	}

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				_ = s.bar.Add(1)
			}
		}
	}()
	return s
}

// Stop clears the spinner. Safe to call more than once.
func (s *spinner) Stop() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.stop)
		s.done.Wait()
		_ = s.bar.Finish()
	})
}
