package main

import "testing"

// Smoke test to ensure main honors SKIP_TUI_RUN and does not block test runs.
func TestMainSkipsWhenEnvSet(t *testing.T) {
	t.Setenv("SKIP_TUI_RUN", "1")
	main()
}
