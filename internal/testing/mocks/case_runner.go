// Package mocks provides shared test doubles for paramsweep packages.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndreyAkinshin/paramsweep/internal/runner"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// CaseRunner implements runner.CaseRunner for testing.
// Use NewCaseRunner() to create instances with a fluent builder API.
type CaseRunner struct {
	value    float64
	values   map[string]float64
	failures map[string]error
	panics   map[string]any
	delay    time.Duration

	// RunFunc, when set, replaces the canned behavior entirely.
	RunFunc func(ctx context.Context, cfg *settings.Configuration) (runner.Measurement, error)

	// Execution tracking (thread-safe)
	runCount int32
	inFlight int32
	peak     int32
	mu       sync.Mutex
	runOrder []string
	seen     map[string]*settings.Configuration
}

// NewCaseRunner creates a mock that measures value for every case.
func NewCaseRunner(value float64) *CaseRunner {
	return &CaseRunner{
		value:    value,
		values:   make(map[string]float64),
		failures: make(map[string]error),
		panics:   make(map[string]any),
		seen:     make(map[string]*settings.Configuration),
	}
}

// WithValue makes the named case measure v.
func (m *CaseRunner) WithValue(caseName string, v float64) *CaseRunner {
	m.values[caseName] = v
	return m
}

// WithFailure makes the named case return err.
func (m *CaseRunner) WithFailure(caseName string, err error) *CaseRunner {
	m.failures[caseName] = err
	return m
}

// WithPanic makes the named case panic with v.
func (m *CaseRunner) WithPanic(caseName string, v any) *CaseRunner {
	m.panics[caseName] = v
	return m
}

// WithDelay makes every case take at least d, or until ctx is done.
func (m *CaseRunner) WithDelay(d time.Duration) *CaseRunner {
	m.delay = d
	return m
}

// WithRunFunc sets the function called by Run.
func (m *CaseRunner) WithRunFunc(fn func(ctx context.Context, cfg *settings.Configuration) (runner.Measurement, error)) *CaseRunner {
	m.RunFunc = fn
	return m
}

// Run implements runner.CaseRunner.
func (m *CaseRunner) Run(ctx context.Context, cfg *settings.Configuration) (runner.Measurement, error) {
	atomic.AddInt32(&m.runCount, 1)
	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)
	for {
		p := atomic.LoadInt32(&m.peak)
		if n <= p || atomic.CompareAndSwapInt32(&m.peak, p, n) {
			break
		}
	}

	m.mu.Lock()
	m.runOrder = append(m.runOrder, cfg.Name)
	m.seen[cfg.Name] = cfg
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, cfg)
	}

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return runner.Measurement{}, &runner.RunError{Kind: runner.KindCanceled, Case: cfg.Name, Cause: ctx.Err()}
		case <-time.After(m.delay):
		}
	}

	if p, ok := m.panics[cfg.Name]; ok {
		panic(p)
	}
	if err, ok := m.failures[cfg.Name]; ok {
		return runner.Measurement{Duration: time.Millisecond}, err
	}
	v := m.value
	if cv, ok := m.values[cfg.Name]; ok {
		v = cv
	}
	return runner.Measurement{Value: v, Duration: time.Millisecond}, nil
}

// Test inspection methods

// RunCount returns the number of times Run was called.
func (m *CaseRunner) RunCount() int32 {
	return atomic.LoadInt32(&m.runCount)
}

// PeakConcurrency returns the largest number of simultaneous Run calls.
func (m *CaseRunner) PeakConcurrency() int32 {
	return atomic.LoadInt32(&m.peak)
}

// RunOrder returns the case names in the order Run was called.
func (m *CaseRunner) RunOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.runOrder))
	copy(result, m.runOrder)
	return result
}

// Config returns the configuration the named case was run with.
func (m *CaseRunner) Config(caseName string) (*settings.Configuration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.seen[caseName]
	return cfg, ok
}

// Reset clears execution tracking state.
func (m *CaseRunner) Reset() {
	atomic.StoreInt32(&m.runCount, 0)
	atomic.StoreInt32(&m.peak, 0)
	m.mu.Lock()
	m.runOrder = nil
	m.seen = make(map[string]*settings.Configuration)
	m.mu.Unlock()
}
