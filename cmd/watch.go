package cmd

import (
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/derivekit/derivekit/internal/comment"
	"github.com/derivekit/derivekit/internal/config"
	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of filesystem events, like an editor
// writing several files on save-all, into one pipeline run.
const debounceWindow = 250 * time.Millisecond

// watch runs the pipeline once, then again every time a .go file under
// the root changes. It blocks until the watcher fails.
func watch(cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchTree(watcher, cfg.Path); err != nil {
		return err
	}

	runOnce(cfg)
	comment.WriteAll()
	log.Printf("watching %s", cfg.Path)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// new directories need their own watch; watchTree ignores
			// plain files
			if event.Has(fsnotify.Create) {
				_ = watchTree(watcher, event.Name)
			}

			if !relevant(cfg, event.Name) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err

		case <-pending:
			runOnce(cfg)
			comment.WriteAll()
		}
	}
}

// watchTree registers root and every directory below it. Non-directory
// paths are ignored so it can be fed raw create events.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (name == "vendor" || name == "testdata" ||
			strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// relevant filters watcher events down to source changes that could
// affect generation, skipping our own outputs.
func relevant(cfg *config.Config, path string) bool {
	if filepath.Ext(path) != ".go" {
		return false
	}
	if path == cfg.DiffFile || path == cfg.CacheFile {
		return false
	}
	return true
}
