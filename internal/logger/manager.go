// internal/logger/manager.go

package logger

import (
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/qlog-io/qlog/internal/config"
)

// Manager handles the lifecycle and access to Logger instances, one per
// enabled destination in the configuration. Each Logger owns exactly one
// Destination and its own worker goroutine; a message is routed to a single
// named logger, never fanned out.
type Manager struct {
	mu        sync.RWMutex
	loggers   map[string]*Logger
	order     []string // config order of the initialized loggers
	appLogger *AppLogger
}

// NewManager creates a new logger manager.
func NewManager() *Manager {
	return &Manager{
		loggers:   make(map[string]*Logger),
		appLogger: GetAppLogger(),
	}
}

// InitLoggers builds and starts a Logger per enabled destination. Existing
// loggers are drained and closed first (e.g. on config reload). Format
// overrides apply to every logger when non-empty.
func (m *Manager) InitLoggers(destinations []config.LogDestination, format config.FormatConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeAllLocked()

	var initErrors []error
	for _, dest := range destinations {
		if !dest.Enabled {
			continue
		}

		d, err := newDestination(dest)
		if err != nil {
			m.appLogger.Error("Failed to initialize destination '%s' (type: %s): %v", dest.Name, dest.Type, err)
			initErrors = append(initErrors, fmt.Errorf("dest '%s': %w", dest.Name, err))
			continue
		}

		lgr := New(d)
		if format.Message != "" {
			lgr.SetFormat(format.Message)
		}
		if format.Datetime != "" {
			lgr.SetDatetimeFormat(format.Datetime)
		}
		lgr.Start()

		m.loggers[dest.Name] = lgr
		m.order = append(m.order, dest.Name)
		m.appLogger.Info("Initialized destination '%s' (type: %s)", dest.Name, dest.Type)
	}

	if len(initErrors) > 0 {
		return fmt.Errorf("failed to initialize some destinations: %v", initErrors)
	}
	return nil
}

// newDestination builds the Destination matching the configured type.
func newDestination(cfg config.LogDestination) (Destination, error) {
	switch cfg.Type {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file destination requires a path")
		}
		d := NewFileDestination(cfg.Path)
		if cfg.FlushRate != nil {
			d.SetFlushRate(*cfg.FlushRate)
		}
		return d, nil

	case "socket":
		if cfg.Host == "" {
			return nil, fmt.Errorf("socket destination requires a host")
		}
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return nil, fmt.Errorf("socket destination requires a valid port, got %d", cfg.Port)
		}
		var d *SocketDestination
		if cfg.TLS {
			d = NewTLSSocketDestination(cfg.Host, cfg.Port, &tls.Config{
				ServerName:         cfg.Host,
				InsecureSkipVerify: cfg.TLSSkipVerify,
			})
		} else {
			d = NewSocketDestination(cfg.Host, cfg.Port)
		}
		if cfg.ConnectTimeout != "" {
			timeout, err := config.ParseDuration(cfg.ConnectTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid connect_timeout '%s': %w", cfg.ConnectTimeout, err)
			}
			d.SetConnectTimeout(timeout)
		}
		return d, nil

	case "gelf":
		if cfg.Host == "" {
			return nil, fmt.Errorf("gelf destination requires a host")
		}
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return nil, fmt.Errorf("gelf destination requires a valid port, got %d", cfg.Port)
		}
		return NewGelfDestination(cfg.Host, cfg.Port, cfg.Protocol, cfg.CompressionType), nil

	case "debug":
		return NewDebugDestination(nil), nil
	}
	return nil, fmt.Errorf("unsupported destination type: %s", cfg.Type)
}

// Get retrieves a logger by destination name, or nil if not initialized.
func (m *Manager) Get(name string) *Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loggers[name]
}

// DefaultName returns the name of the first initialized destination, or the
// empty string when none exist.
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.order) == 0 {
		return ""
	}
	return m.order[0]
}

// Names returns the names of all initialized loggers in config order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// CloseAll drains and terminates every managed logger. It blocks until all
// workers have written their backlog and closed their destinations.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAllLocked()
}

func (m *Manager) closeAllLocked() {
	if len(m.loggers) == 0 {
		return
	}

	m.appLogger.Info("Draining %d destination(s).", len(m.loggers))
	var wg sync.WaitGroup
	for name, lgr := range m.loggers {
		wg.Add(1)
		go func(name string, lgr *Logger) {
			defer wg.Done()
			lgr.FinishWriting()
			lgr.Wait()
			if errStr := lgr.ErrorString(); errStr != "" {
				m.appLogger.Warn("Destination '%s' terminated with error: %s", name, errStr)
			}
		}(name, lgr)
	}
	wg.Wait()
	m.appLogger.Info("Destinations closed.")
	m.loggers = make(map[string]*Logger)
	m.order = nil
}
