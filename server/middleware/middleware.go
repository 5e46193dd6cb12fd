package middleware

import "net/http"

// Middleware decorates an http.Handler. streamkit installs its stack around
// the whole gin engine, so every route sees it, event streams included.
type Middleware func(http.Handler) http.Handler

// Chain folds mws into one Middleware. mws[0] ends up outermost.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
