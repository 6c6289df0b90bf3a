package geom

import "fmt"

// Error describes an unrecoverable geometric defect in the input: a
// degenerate polygon, a non-coplanar merge set or an unresolvable face
// match. Requests that hit one are aborted and never retried.
type Error struct {
	Op  string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("geom: %s: %s", e.Op, e.Msg)
}

func errorf(op, format string, args ...interface{}) error {
	return &Error{Op: op, Msg: fmt.Sprintf(format, args...)}
}
