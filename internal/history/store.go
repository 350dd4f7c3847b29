// Package history models the address bar of a single-page app: the current
// location, listeners for navigation events, and programmatic navigation.
package history

// Listener receives every navigation event in the order it happened.
type Listener func(loc Location, action Action)

// Store is the navigation history a controller observes and drives.
type Store interface {
	// Current returns the latest known location.
	Current() Location
	// Subscribe registers l and returns a func releasing it. The release func
	// may be called any number of times.
	Subscribe(l Listener) (unsubscribe func())
	// Push navigates to path and notifies subscribers.
	Push(path string)
}
