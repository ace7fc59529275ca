// Package tail follows a growing log file, mirroring the behavior of
// tail -f for environments without a terminal multiplexer.
package tail

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Follow copies bytes appended to the file at path into w until the
// context is cancelled. The file does not have to exist yet; its
// content is picked up once it appears. Returns nil on cancellation.
func Follow(ctx context.Context, path string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file, so that a file
	// created after the watch starts is still picked up.
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var file *os.File
	defer func() {
		if file != nil {
			file.Close()
		}
	}()

	// drain copies everything between the current read position and
	// the end of the file. The descriptor keeps the position across
	// calls, so each call emits only the newly appended bytes.
	drain := func() error {
		if file == nil {
			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			file = f
		}

		_, err := io.Copy(w, file)
		return err
	}

	if err := drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := drain(); err != nil {
					return err
				}
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
