package epg

import (
	"errors"
	"fmt"
)

// ErrEmptyWindow indicates the current window holds no programmes on any
// channel; there is nothing sensible to draw.
var ErrEmptyWindow = errors.New("no programmes found in window")

// ErrDecode marks a malformed channel or listing document. Unlike a
// transient fetch failure, a malformed document will not fix itself on
// retry, so decode failures are fatal wherever they surface.
var ErrDecode = errors.New("malformed document")

// FetchError wraps a failed resource fetch.
//
// Transient errors (unreachable server, 5xx) may succeed on retry and are
// recovered locally during navigation. Permanent errors will not resolve
// on their own. Either kind is fatal when it hits the initial load.
type FetchError struct {
	Resource  string
	Status    int // HTTP status when the response got that far, else 0
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.Resource, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFound reports whether err is a fetch failure with HTTP 404, which the
// channel source resolves as a confirmed-empty day rather than an error.
func NotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Status == 404
}
