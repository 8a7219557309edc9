package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the position of a circuit.
type State int

const (
	// StateClosed lets calls through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown passes.
	StateOpen
	// StateHalfOpen lets one trial call through.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Allow while calls are rejected.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config is the circuit_breaker section of the gateway config.
type Config struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
	// Cooldown is how long an open circuit waits before a trial call.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
}

// Validate checks the configuration after ApplyDefaults.
func (c *Config) Validate() error {
	if c.MaxFailures <= 0 {
		return fmt.Errorf("circuit_breaker.max_failures must be positive (got: %d)", c.MaxFailures)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("circuit_breaker.cooldown must be positive (got: %s)", c.Cooldown)
	}
	return nil
}

// Option configures a Breaker.
type Option func(*Breaker)

// OnStateChange is called on every transition. It runs under the
// breaker's lock and must not call back into it.
func OnStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// Breaker is a circuit breaker for one upstream.
type Breaker struct {
	name     string
	cfg      Config
	onChange func(name string, from, to State)
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// New creates a closed breaker. Zero fields of cfg take their defaults.
func New(name string, cfg Config, opts ...Option) *Breaker {
	cfg.ApplyDefaults()
	b := &Breaker{name: name, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the upstream the breaker guards.
func (b *Breaker) Name() string { return b.name }

// Allow reports whether a call may start. Every allowed call must end
// with Record or Abandon.
func (b *Breaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.trial {
			return ErrCircuitOpen
		}
		b.trial = true
	}
	return nil
}

// Record ends an allowed call. A success closes the circuit and clears
// the failure count; a failed trial call reopens it.
func (b *Breaker) Record(failed bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	b.trial = false
	if !failed {
		b.failures = 0
		b.to(StateClosed)
		return
	}
	b.failures++
	if state == StateHalfOpen || b.failures >= b.cfg.MaxFailures {
		b.openedAt = b.now()
		b.to(StateOpen)
	}
}

// Abandon ends an allowed call that produced no verdict, such as one
// canceled by its caller.
func (b *Breaker) Abandon() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.trial = false
	b.mu.Unlock()
}

// State returns the current state.
func (b *Breaker) State() State {
	if b == nil {
		return StateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// current moves an open circuit to half-open once the cooldown passed.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.to(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) to(state State) {
	if b.state == state {
		return
	}
	from := b.state
	b.state = state
	if state != StateHalfOpen {
		b.trial = false
	}
	if b.onChange != nil {
		b.onChange(b.name, from, state)
	}
}
