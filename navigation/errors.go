package navigation

import (
	"context"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// NavigatedError is the cancellation cause recorded by a Canceller
type NavigatedError struct {
	Target string
}

func (e *NavigatedError) Error() string {
	return "navigated to " + e.Target
}

func (e *NavigatedError) Unwrap() error {
	return errors.ErrSessionNavigation
}

// NavigatedTo returns the navigation target if ctx was cancelled by a Canceller
func NavigatedTo(ctx context.Context) (string, bool) {
	var navErr *NavigatedError
	if errors.As(context.Cause(ctx), &navErr) {
		return navErr.Target, true
	}
	return "", false
}
