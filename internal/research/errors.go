package research

import (
	"errors"
	"fmt"
)

// ErrNoResults is the request-level failure raised only when every adapter
// failed or came back empty. Distinct from "everything scored low", which is a
// valid result.
var ErrNoResults = errors.New("no results available from any source")

// InvalidContextError reports a request context that cannot be researched at
// all. Detected before any adapter runs.
type InvalidContextError struct {
	Field  string
	Reason string
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("invalid research context: %s %s", e.Field, e.Reason)
}

// IsInvalidContext reports whether err is an InvalidContextError.
func IsInvalidContext(err error) bool {
	var ice *InvalidContextError
	return errors.As(err, &ice)
}
