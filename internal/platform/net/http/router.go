package http

import "net/http"

// Handler is the platform handler type all modules mount with
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing seam the api mounts against; chi satisfies it
// through the adapter in this package
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Delete(path string, h Handler)

	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Route(pattern string, fn func(Router))

	Mux() http.Handler
}
