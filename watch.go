package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// editors often write a file in several steps
const watchSettle = 200 * time.Millisecond

// watchScene exports once and then again after every change of the scene
// file, until interrupted.
func (c *cli) watchScene() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "Failed to create watcher")
	}
	defer watcher.Close()

	target, err := filepath.Abs(c.scenePath)
	if err != nil {
		return err
	}
	// the directory survives editors that replace the file by renaming
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "Failed to watch %q", c.scenePath)
	}

	log.Printf("[watch] watching %s", c.scenePath)
	c.run()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(watchSettle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] %v", err)
		case <-settle:
			settle = nil
			log.Printf("[watch] %s changed", c.scenePath)
			c.run()
		}
	}
}
