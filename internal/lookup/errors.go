package lookup

import "fmt"

// Kind classifies why a single lookup call failed.
type Kind int

const (
	// Timeout means the call exceeded its deadline (connect or transfer).
	Timeout Kind = iota + 1
	// Unreachable means the endpoint could not be reached at all.
	Unreachable
	// BadStatus means the endpoint answered with a non-2xx status.
	BadStatus
	// BadPayload means the response body was not a decodable record.
	BadPayload
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Unreachable:
		return "unreachable"
	case BadStatus:
		return "bad status"
	case BadPayload:
		return "bad payload"
	default:
		return "unknown"
	}
}

// Error is a per-call lookup failure. It is scoped to the one key that
// issued the call; sibling lookups are unaffected.
type Error struct {
	Kind   Kind
	Key    string
	Status int // HTTP status, set for BadStatus
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == BadStatus:
		return fmt.Sprintf("lookup for key %q: %s %d", e.Key, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("lookup for key %q: %s: %v", e.Key, e.Kind, e.Err)
	default:
		return fmt.Sprintf("lookup for key %q: %s", e.Key, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
