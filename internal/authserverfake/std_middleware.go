package authserverfake

import "net/http"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// RecordMiddleware counts requests per path and remembers the Authorization header
func (s *Server) RecordMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.calls[r.URL.Path]++
		s.lastAuth[r.URL.Path] = r.Header.Get("Authorization")
		s.lock.Unlock()
		next(w, r)
	}
}
