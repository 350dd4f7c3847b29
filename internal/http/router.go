package http

import (
	nethttp "net/http"

	"github.com/gorilla/mux"

	"tournament-nav/internal/http/handlers"
)

// NewRouter registers HTTP routes on a gorilla/mux router.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	r := mux.NewRouter()
	handler.Register(r)
	return r
}
