package protocol

import "fmt"

// StatusError represents a device-level rejection: the device answered a
// request or chunk command with a nonzero status byte. The code is surfaced
// verbatim; the firmware does not document individual values.
type StatusError struct {
	// Operation is the command that was rejected
	Operation string

	// Code is the status byte from the reply
	Code byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s rejected by device (status 0x%02X)", e.Operation, e.Code)
}

// IsStatusError returns true if the error is a StatusError.
func IsStatusError(err error) bool {
	_, ok := err.(*StatusError)
	return ok
}

// ShortReplyError indicates that a reply carried fewer payload bytes than the
// operation requires. Fatal to the single operation; a surrounding batch such
// as a slot listing may continue with the next item.
type ShortReplyError struct {
	// Operation is the command whose reply was too short
	Operation string

	// Got is the payload length received
	Got int

	// Min is the minimum payload length required
	Min int
}

func (e *ShortReplyError) Error() string {
	return fmt.Sprintf("%s reply too short: got %d bytes, need at least %d", e.Operation, e.Got, e.Min)
}
