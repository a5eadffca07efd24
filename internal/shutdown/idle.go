// Package shutdown provides idle monitoring for scale-to-zero deployments.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// IdleMonitor tracks request activity and signals once the server has had no
// request in flight for the configured timeout. A conversion counts as
// activity for its whole duration, so an idle stop never interrupts one.
type IdleMonitor struct {
	timeout       time.Duration
	checkInterval time.Duration
	excludePaths  []string
	logger        *slog.Logger

	mu           sync.Mutex
	active       int
	lastActivity time.Time

	shutdownChan chan struct{}
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// IdleMonitorConfig holds configuration for the idle monitor.
type IdleMonitorConfig struct {
	// Timeout of 0 disables the monitor.
	Timeout time.Duration

	// CheckInterval defaults to Timeout/6, kept within 5s..30s.
	CheckInterval time.Duration

	// ExcludePaths are path prefixes that do not count as activity (probes).
	ExcludePaths []string

	Logger *slog.Logger
}

// NewIdleMonitor creates a new idle monitor.
func NewIdleMonitor(cfg IdleMonitorConfig) *IdleMonitor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = min(max(cfg.Timeout/6, 5*time.Second), 30*time.Second)
	}
	return &IdleMonitor{
		timeout:       cfg.Timeout,
		checkInterval: interval,
		excludePaths:  cfg.ExcludePaths,
		logger:        cfg.Logger.With("component", "idle_monitor"),
		lastActivity:  time.Now(),
		shutdownChan:  make(chan struct{}),
		stopChan:      make(chan struct{}),
	}
}

// Enabled reports whether the monitor will ever signal.
func (m *IdleMonitor) Enabled() bool {
	return m.timeout > 0
}

// Start begins monitoring in the background.
func (m *IdleMonitor) Start() {
	if !m.Enabled() {
		m.logger.Debug("idle monitoring disabled (timeout=0)")
		return
	}
	m.logger.Info("idle monitoring started", "timeout", m.timeout, "exclude_paths", m.excludePaths)
	go m.run()
}

// Stop stops the monitor. It is safe to call more than once.
func (m *IdleMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// ShutdownChan is closed when the idle timeout is reached. It is never closed
// for a disabled monitor.
func (m *IdleMonitor) ShutdownChan() <-chan struct{} {
	return m.shutdownChan
}

// Middleware counts requests outside the excluded paths as activity.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range m.excludePaths {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}
		m.track(1)
		defer m.track(-1)
		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) track(delta int) {
	m.mu.Lock()
	m.active += delta
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// idle returns how long the server has been idle, or 0 while a request is
// in flight.
func (m *IdleMonitor) idle(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active > 0 {
		m.lastActivity = now
		return 0
	}
	return now.Sub(m.lastActivity)
}

func (m *IdleMonitor) run() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case now := <-ticker.C:
			idle := m.idle(now)
			if idle >= m.timeout {
				m.logger.Info("idle timeout reached, signaling graceful shutdown", "idle_time", idle, "timeout", m.timeout)
				close(m.shutdownChan)
				return
			}
			m.logger.Debug("idle check", "idle_time", idle, "timeout", m.timeout)
		}
	}
}
