package http

import (
	"net/http"

	"logvault/internal/platform/net/http/bind"
)

// JSONHandler adapts a handler that takes a validated JSON body to a
// platform Handler. Decode and validation failures short-circuit with the
// mapped error response
func JSONHandler[T any](fn func(*http.Request, T) Response) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return fn(r, in)
	})
}
