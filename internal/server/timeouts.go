package server

import "time"

// serverTimeouts bounds plain HTTP exchanges on the API listener. Upgraded
// websocket connections are hijacked and leave these deadlines behind.
type serverTimeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

var apiTimeouts = serverTimeouts{
	ReadHeader: 5 * time.Second,
	Read:       10 * time.Second,
	Write:      10 * time.Second,
	Idle:       60 * time.Second,
}

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
