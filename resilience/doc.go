// Package resilience guards upstream providers with circuit breakers.
//
// A Breaker counts consecutive failed calls. Once MaxFailures is reached
// the circuit opens and Allow fails fast with ErrCircuitOpen. After
// Cooldown a single trial call is let through; its outcome closes the
// circuit again or reopens it.
//
//	b := resilience.New("openai", cfg)
//	if err := b.Allow(); err != nil {
//	    return err
//	}
//	err := call()
//	b.Record(err != nil)
//
// A nil *Breaker allows every call, so callers need no enabled check.
package resilience
