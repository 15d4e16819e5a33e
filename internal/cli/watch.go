package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/pipeline"
	"github.com/mvp-joe/autofix/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchLang     string
	watchDebounce time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>...",
	Short: "Re-check source files every time they are saved",
	Long: `Watch source files and run the compiler check (single mode) after each
save. Saves made while a check is running are picked up when it finishes.

Press Ctrl+C to stop.

Example:
  autofix watch main.cpp util.cpp`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchLang, "lang", "l", "", "language override for every watched file")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period after a save before checking")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, cleanup, err := buildPipeline(ctx, logger, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	fw, err := watcher.NewFileWatcher(args, watcher.WithDebounce(watchDebounce), watcher.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to watch files: %w", err)
	}
	defer fw.Stop()

	checks := &backgroundChecks{
		ctx: ctx,
		fw:  fw,
		check: func(file string) {
			checkWatched(ctx, cmd, p, file)
		},
	}

	if err := fw.Start(ctx, checks.run); err != nil {
		return err
	}

	headingColor.Fprintf(cmd.OutOrStdout(), "Watching %d file(s). Press Ctrl+C to stop.\n", len(args))
	<-ctx.Done()

	_ = fw.Stop()
	checks.wait()
	return nil
}

// backgroundChecks runs checks off the watch loop. The watcher is paused
// while a batch runs; saves made meanwhile arrive as one batch on Resume.
type backgroundChecks struct {
	ctx   context.Context
	fw    watcher.FileWatcher
	check func(file string)
	wg    sync.WaitGroup
}

func (b *backgroundChecks) run(files []string) {
	b.fw.Pause()
	b.wg.Go(func() {
		for _, file := range files {
			if b.ctx.Err() != nil {
				return
			}
			b.check(file)
		}
		if b.ctx.Err() == nil {
			b.fw.Resume()
		}
	})
}

// wait blocks until every started batch has finished.
func (b *backgroundChecks) wait() {
	b.wg.Wait()
}

func checkWatched(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, file string) {
	logger.Debug("file saved", zap.String("file", file))

	outcome, err := p.RunFile(ctx, file, watchLang, fixer.ModeSingleShot)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		newRenderer(cmd.ErrOrStderr(), quiet).Failure(err)
		return
	}
	newRenderer(cmd.OutOrStdout(), quiet).Outcome(outcome)
}
