package history

import "sync"

var (
	defaultOnce    sync.Once
	defaultHistory *Memory
)

// Default returns the process-wide history, creating it at "/" on first use.
// Controllers take their Store explicitly; this exists for hosts that own a
// single address bar, such as the terminal client.
func Default() *Memory {
	defaultOnce.Do(func() {
		defaultHistory = NewMemory("/")
	})
	return defaultHistory
}
