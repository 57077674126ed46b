// Package jsonfile stores the local task cache as a JSON file and watches it
// for outside modification.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
)

// CacheKey names the cache blob. The file is stored as <dir>/<CacheKey>.json.
const CacheKey = "zen-tasks"

// Cache implements tasksync.Cache with a single JSON array on disk.
type Cache struct {
	path string
	log  zerolog.Logger

	mu      sync.Mutex
	written []byte
}

var _ tasksync.Cache = (*Cache)(nil)

// NewCache returns a cache stored under dir. The directory is created on the
// first write.
func NewCache(dir string) *Cache {
	return &Cache{
		path: filepath.Join(dir, CacheKey+".json"),
		log:  logging.Component("cache"),
	}
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}

// Read returns the cached tasks. A missing, empty or unparsable file is
// reported as tasksync.ErrCacheMiss.
func (c *Cache) Read(ctx context.Context) ([]task.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tasksync.ErrCacheMiss
		}
		c.log.Warn().Err(err).Str("path", c.path).Msg("unreadable task cache")
		return nil, tasksync.ErrCacheMiss
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, tasksync.ErrCacheMiss
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		c.log.Warn().Err(err).Str("path", c.path).Msg("corrupt task cache, ignoring")
		return nil, tasksync.ErrCacheMiss
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Write replaces the cache atomically. Writes whose content matches the file
// on disk are skipped.
func (c *Cache) Write(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if current, err := os.ReadFile(c.path); err == nil && bytes.Equal(current, data) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write task cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace task cache: %w", err)
	}

	c.written = data
	return nil
}

// ownWrite reports whether data is exactly what this cache last wrote.
func (c *Cache) ownWrite(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written != nil && bytes.Equal(c.written, data)
}
