// Package templates holds the catalog of letter templates used to build
// generation prompts. The built-in catalog can be replaced by a YAML file
// that is reloaded when it changes on disk.
package templates

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtin []byte

type Template struct {
	Key            string   `yaml:"key" json:"key"`
	Label          string   `yaml:"label" json:"label"`
	Description    string   `yaml:"description" json:"description"`
	RequiredFields []string `yaml:"required_fields" json:"required_fields"`
	Body           string   `yaml:"body" json:"body"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// Parse decodes a YAML list of templates. Keys must be present and unique.
func Parse(data []byte) (map[string]Template, error) {
	var list []Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: parse templates: %v", common.ErrValidation, err)
	}
	out := make(map[string]Template, len(list))
	for i, t := range list {
		t.Key = strings.TrimSpace(t.Key)
		if t.Key == "" {
			return nil, fmt.Errorf("%w: template #%d has no key", common.ErrValidation, i)
		}
		if _, dup := out[t.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate template key %q", common.ErrValidation, t.Key)
		}
		if t.Label == "" {
			t.Label = humanize(t.Key)
		}
		out[t.Key] = t
	}
	return out, nil
}

// NewBuiltin returns the catalog compiled into the binary.
func NewBuiltin() *Catalog {
	m, err := Parse(builtin)
	if err != nil {
		panic(err)
	}
	return &Catalog{templates: m}
}

// Load reads a catalog from path.
func Load(path string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(path); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the catalog contents with the file at path. On error the
// current contents are kept.
func (c *Catalog) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m, err := Parse(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.templates = m
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Get(key string) (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[key]
	return t, ok
}

// List returns templates sorted by key.
func (c *Catalog) List() []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Label returns the display label for a letter type. Unknown keys fall back
// to the key with underscores replaced by spaces.
func (c *Catalog) Label(key string) string {
	if t, ok := c.Get(key); ok {
		return t.Label
	}
	return humanize(key)
}

func humanize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Watch reloads the catalog whenever path is written or replaced, until ctx
// is done. The parent directory is watched so editors that swap files are
// handled.
func (c *Catalog) Watch(ctx context.Context, path string, log logging.Logger) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fsw.Close()
		return err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := c.Reload(abs); err != nil {
					log.Warn(ctx, "template catalog reload failed", "path", abs, "error", err)
					continue
				}
				log.Info(ctx, "template catalog reloaded", "path", abs)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Warn(ctx, "template watcher error", "error", err)
			}
		}
	}()
	return nil
}
