package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStalledCursor is returned when the API reports more pages but hands
// back the cursor it was just given.
var ErrStalledCursor = errors.New("graphql: cursor did not advance")

// TransportError is a network or HTTP level failure, including responses
// that are not a GraphQL document.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("graphql transport: status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("graphql transport: %v", e.Err)
	default:
		return fmt.Sprintf("graphql transport: status %d: %s", e.StatusCode, e.Body)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError carries the top-level errors list of a response.
type APIError struct {
	Errors []Error
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return "graphql api: errors field present"
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "graphql api: " + strings.Join(msgs, "; ")
}
