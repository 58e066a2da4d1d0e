// internal/filter/filter.go

package filter

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/qlog-io/qlog/internal/config"
	"github.com/qlog-io/qlog/internal/logger"
)

// Filter decides whether an incoming line is enqueued at all. Patterns are
// pre-compiled once at construction.
type Filter struct {
	levels map[logger.Level]bool // empty means all levels pass
	globs  []glob.Glob           // empty means all messages pass
}

// New builds a Filter from configuration. An empty configuration admits
// everything.
func New(cfg config.FilterConfig) (*Filter, error) {
	f := &Filter{
		levels: make(map[logger.Level]bool, len(cfg.Levels)),
	}

	for i, name := range cfg.Levels {
		level, err := logger.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("filter.levels[%d]: %w", i, err)
		}
		f.levels[level] = true
	}

	if len(cfg.Match) > 0 {
		f.globs = make([]glob.Glob, 0, len(cfg.Match))
		for i, pattern := range cfg.Match {
			g, err := glob.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("filter.match[%d]: invalid glob pattern '%s': %w", i, pattern, err)
			}
			f.globs = append(f.globs, g)
		}
	}

	return f, nil
}

// Allow reports whether a message at the given level should be enqueued.
// The level must be in the allow-list (when one is configured) and the
// message must match at least one glob (when any are configured).
func (f *Filter) Allow(message string, level logger.Level) bool {
	if len(f.levels) > 0 && !f.levels[level] {
		return false
	}
	if len(f.globs) == 0 {
		return true
	}
	for _, g := range f.globs {
		if g.Match(message) {
			return true
		}
	}
	return false
}
