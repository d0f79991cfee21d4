package controller

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
)

// TokenSetter receives rotated API tokens.
type TokenSetter interface {
	SetToken(token string)
}

// WatchAPIKeyFile watches the mounted secret file at path and pushes the
// new token into setter whenever the file content changes. Kubernetes
// updates mounted secrets by swapping a symlinked directory, so the
// parent directory is watched rather than the file itself. The watcher
// runs until ctx is cancelled; a path that cannot be watched is logged
// and ignored since rotation is an optional nicety.
func WatchAPIKeyFile(ctx context.Context, path string, setter TokenSetter) {
	if path == "" {
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn(subsystem, "API key rotation disabled, cannot create watcher: %v", err)
		return
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		logging.Warn(subsystem, "API key rotation disabled, cannot watch %s: %v", filepath.Dir(path), err)
		w.Close()
		return
	}
	logging.Info(subsystem, "Watching %s for API key rotation", path)

	// The baseline must be captured before the watcher goroutine starts:
	// a rotation landing between this call returning and the goroutine's
	// first read would otherwise be mistaken for the baseline and never
	// pushed.
	last := readKey(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				key := readKey(path)
				if key == "" || key == last {
					continue
				}
				last = key
				logging.Info(subsystem, "API key file changed, rotating token")
				setter.SetToken(key)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warn(subsystem, "API key watcher error: %v", err)
			}
		}
	}()
}

func readKey(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
