/*
Package reload hot-reloads a constant-set file.

PURPOSE:
  Operators correct a rate or publish a mid-year change by editing the file
  passed to 'serve --constants-file'. The watcher re-parses it on every save
  and hands valid sets to a callback; invalid edits are logged and ignored,
  so the previous set stays active.

HOW IT WORKS:
  - Watches the file's directory, not the file: editors often save by
    writing a temp file and renaming it over the original
  - Events for other files in the directory are ignored
  - Rapid saves are debounced into one reload

USAGE:
  w := reload.NewWatcher(path, handler.InstallConstantSet, logger)
  err := w.Run(ctx) // blocks until ctx is done

SEE ALSO:
  - factory/constants.go: Parsing and validation
  - api/handlers.go: InstallConstantSet
*/
package reload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/warp/paycalc/factory"
	"github.com/warp/paycalc/payroll"
	"go.uber.org/zap"
)

// DefaultDebounce batches the several events a single save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads one constant-set file when it changes.
type Watcher struct {
	path     string
	factory  *factory.ConstantSetFactory
	onChange func(payroll.ConstantSet) error
	logger   *zap.Logger
	Debounce time.Duration
}

// NewWatcher creates a watcher for path. onChange receives every valid set;
// an error from it counts as a rejected reload.
func NewWatcher(path string, onChange func(payroll.ConstantSet) error, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		factory:  factory.NewConstantSetFactory(),
		onChange: onChange,
		logger:   logger,
		Debounce: DefaultDebounce,
	}
}

// Reload parses the file once and calls onChange if it is valid.
func (w *Watcher) Reload() error {
	cs, err := w.factory.ParseFile(w.path)
	if err != nil {
		return err
	}
	return w.onChange(cs)
}

// Run watches until ctx is done. It returns an error only if the watch
// cannot be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("watching constants file", zap.String("path", w.path))

	// Stopped until the first relevant event.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("constants watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.Reload(); err != nil {
				w.logger.Warn("constants file rejected, keeping previous set",
					zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.logger.Info("constants file reloaded", zap.String("path", w.path))
		}
	}
}
