package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator performs a full-page navigation to path. Navigation ends the current page,
// so callers treat it as terminal for any in-flight work tied to that page.
type Navigator interface {
	Navigate(path string)
}

// Func adapts a plain function to a Navigator
type Func func(path string)

func (f Func) Navigate(path string) {
	f(path)
}

// Recorder remembers every navigation target. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths returns the targets in the order they were requested
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Last returns the most recent target, or "" if there was none
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}

// Canceller cancels a context when navigation happens, the way leaving a page tears
// down everything started from it. The first target wins.
type Canceller struct {
	cancel context.CancelCauseFunc
	once   sync.Once
	mu     sync.Mutex
	target string
}

// NewCanceller returns a Canceller and the context it cancels
func NewCanceller(parent context.Context) (*Canceller, context.Context) {
	ctx, cancel := context.WithCancelCause(parent)
	return &Canceller{cancel: cancel}, ctx
}

func (c *Canceller) Navigate(path string) {
	c.once.Do(func() {
		c.mu.Lock()
		c.target = path
		c.mu.Unlock()
		log.Debug().Str("target", path).Msg("Navigating away, cancelling page context")
		c.cancel(&NavigatedError{Target: path})
	})
}

// Target returns where navigation went, or "" if it has not happened
func (c *Canceller) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Stop releases the context without navigating
func (c *Canceller) Stop() {
	c.cancel(context.Canceled)
}
