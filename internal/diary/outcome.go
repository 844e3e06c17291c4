// ABOUTME: Explicit success/failure outcomes returned by controller operations.
// ABOUTME: Lets each call site decide how a failure is surfaced to the user.
package diary

import "fmt"

// Operation names carried by Outcome.
const (
	OpList   = "list"
	OpSubmit = "submit"
	OpDelete = "delete"
)

// Status classifies an Outcome.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusDeclined
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusDeclined:
		return "declined"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one controller operation. Err is set only when Status is StatusFailed.
type Outcome struct {
	Op     string
	Status Status
	Err    error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// AsError converts a failed outcome into an error and returns nil otherwise.
func (o Outcome) AsError() error {
	if o.Status != StatusFailed {
		return nil
	}
	return fmt.Errorf("%s failed: %w", o.Op, o.Err)
}

func ok(op string) Outcome {
	return Outcome{Op: op, Status: StatusOK}
}

func failed(op string, err error) Outcome {
	return Outcome{Op: op, Status: StatusFailed, Err: err}
}
