package matching

import "time"

// SetClock replaces the engine clock in tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}
