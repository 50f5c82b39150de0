package exemplar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"braintrust/internal/logger"

	"github.com/fsnotify/fsnotify"
)

// Cache memoizes exemplar files for one directory and drops an entry whenever
// its file changes on disk.
type Cache struct {
	dir string

	mu      sync.RWMutex
	entries map[string][]string
	// gen is bumped by Invalidate so a load that raced an edit is not stored.
	gen map[string]uint64

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewCache returns a cache for dir. When dir exists it is watched; a missing
// directory is allowed and simply yields no exemplars.
func NewCache(dir string) (*Cache, error) {
	c := &Cache{
		dir:     dir,
		entries: make(map[string][]string),
		gen:     make(map[string]uint64),
		done:    make(chan struct{}),
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Infof("exemplar dir %s not found, watching disabled", dir)
		return c, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create exemplar watcher failed: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch exemplar dir %s failed: %w", dir, err)
	}
	c.watcher = w
	c.wg.Add(1)
	go c.watch()
	return c, nil
}

// Names returns the exemplars for personaID, loading them on first use.
func (c *Cache) Names(personaID string) []string {
	c.mu.RLock()
	names, ok := c.entries[personaID]
	gen := c.gen[personaID]
	c.mu.RUnlock()
	if ok {
		return names
	}
	names, err := Load(c.dir, personaID)
	if err != nil {
		logger.Warnf("ignoring exemplars for %s: %v", personaID, err)
		names = nil
	}
	c.store(personaID, names, gen)
	return names
}

// store caches names unless personaID was invalidated after gen was read.
func (c *Cache) store(personaID string, names []string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[personaID] != gen {
		return
	}
	c.entries[personaID] = names
}

// Invalidate forgets the cached entry for personaID.
func (c *Cache) Invalidate(personaID string) {
	c.mu.Lock()
	delete(c.entries, personaID)
	c.gen[personaID]++
	c.mu.Unlock()
}

func (c *Cache) watch() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case evt, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(evt.Name, ".json") {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			id := strings.TrimSuffix(filepath.Base(evt.Name), ".json")
			c.Invalidate(id)
			logger.Debugf("exemplars for %s invalidated (%s)", id, evt.Op)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("exemplar watcher error: %v", err)
		}
	}
}

// Close stops the watcher.
func (c *Cache) Close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.done)
	err := c.watcher.Close()
	c.wg.Wait()
	c.watcher = nil
	return err
}
