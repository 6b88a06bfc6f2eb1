package cartridge

import "fmt"

// TransportError indicates that the underlying USB channel failed while
// sending or receiving. Fatal: the channel itself is unreliable, so the
// in-flight operation aborts and nothing is retried.
type TransportError struct {
	// Operation is the command during which the channel failed
	Operation string

	// Err is the underlying transport error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EmptyReplyError indicates that the device produced zero reply bytes within
// the receive timeout. Distinct from a transport failure: the device may be
// alive but slow, so the caller decides whether to abort.
type EmptyReplyError struct {
	// Operation is the command that went unanswered
	Operation string
}

func (e *EmptyReplyError) Error() string {
	return fmt.Sprintf("%s: no reply from device", e.Operation)
}

// EchoMismatchError indicates that the first reply byte did not echo the
// command opcode. The host and device are desynchronized, e.g. a stale reply
// from an earlier command was still queued; the protocol has no
// resynchronization primitive, so this is always fatal.
type EchoMismatchError struct {
	// Want is the opcode that was sent
	Want byte

	// Got is the first byte of the reply
	Got byte
}

func (e *EchoMismatchError) Error() string {
	return fmt.Sprintf("command echo mismatch: sent 0x%02X, reply starts with 0x%02X", e.Want, e.Got)
}

// OversizedCommandError indicates that a command frame exceeds the 65-byte
// wire limit. Raised before anything touches the transport.
type OversizedCommandError struct {
	// Len is the offending frame length
	Len int
}

func (e *OversizedCommandError) Error() string {
	return fmt.Sprintf("command frame of %d bytes exceeds the 65-byte limit", e.Len)
}

// DesyncError indicates that an inbound chunk reported (bank, chunk) indices
// different from the host's cursor: the device's internal transfer cursor has
// drifted. Fatal; the only recovery is restarting the whole download.
type DesyncError struct {
	WantBank  uint16
	WantChunk uint16
	GotBank   uint16
	GotChunk  uint16
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("transfer desynchronized: expected bank %d chunk %d, device sent bank %d chunk %d",
		e.WantBank, e.WantChunk, e.GotBank, e.GotChunk)
}
