package history

import "strings"

// Action classifies how a location was reached.
type Action string

const (
	ActionNone    Action = ""
	ActionPush    Action = "PUSH"
	ActionReplace Action = "REPLACE"
	ActionPop     Action = "POP"
)

// Location is an immutable snapshot of the address bar.
type Location struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Key      string `json:"key,omitempty"`
}

// Path reassembles the pathname, search and hash.
func (l Location) Path() string {
	return l.Pathname + l.Search + l.Hash
}

// Segments splits the pathname on "/". The leading empty segment is kept so
// indexes line up with /{tournament}/{stage}/{season}.
func (l Location) Segments() []string {
	return strings.Split(l.Pathname, "/")
}

// Segment returns the i-th segment of the pathname or "" when absent.
func (l Location) Segment(i int) string {
	segs := l.Segments()
	if i < 0 || i >= len(segs) {
		return ""
	}
	return segs[i]
}

// ParsePath builds a Location from "path?search#hash". The key is left empty.
func ParsePath(path string) Location {
	var loc Location
	if i := strings.IndexByte(path, '#'); i >= 0 {
		loc.Hash = path[i:]
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		loc.Search = path[i:]
		path = path[:i]
	}
	if loc.Hash == "#" {
		loc.Hash = ""
	}
	if loc.Search == "?" {
		loc.Search = ""
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	loc.Pathname = path
	return loc
}
