package watcher

import "context"

// FileWatcher reports saves to a fixed set of source files, debounced, with
// pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with the debounced set of changed files.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}
