package cartridge

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/crocotools/go-croco/protocol"
)

// Cartridge drives the command/reply protocol against an open Croco
// Cartridge device. The device must implement io.ReadWriter; a Read that
// times out must return zero bytes and a nil error, which is how the usbdev
// package behaves.
//
// The protocol is strictly synchronous: every command's reply must be read
// before the next command is issued, so a Cartridge must not be used from
// more than one goroutine at a time.
type Cartridge struct {
	device io.ReadWriter
	config Config
}

// New creates a new cartridge client for the given device.
//
// Example:
//
//	dev, err := usbdev.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	cart := cartridge.New(dev,
//	    cartridge.WithProgressCallback(progressFunc),
//	)
func New(device io.ReadWriter, opts ...Option) *Cartridge {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cartridge{
		device: device,
		config: cfg,
	}
}

// execute sends one command frame and reads its reply.
//
// The frame is [opcode][payload]; frames over the 65-byte wire limit fail
// with OversizedCommandError before touching the transport. After the send,
// execute waits the configured settle delay, then reads up to 128 bytes.
// On success it returns the reply payload with the echo byte stripped,
// truncated to maxLen (the firmware sends slightly variable-length replies
// for forward compatibility, so extra bytes are not an error).
//
// Failure modes: TransportError (send or non-timeout receive failure),
// EmptyReplyError (zero bytes within the timeout) and EchoMismatchError
// (reply does not start with the opcode).
func (c *Cartridge) execute(ctx context.Context, operation string, frame []byte, maxLen int) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty command frame")
	}
	if len(frame) > protocol.MaxCommandSize {
		return nil, &OversizedCommandError{Len: len(frame)}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancelled: %w", err)
	}

	opcode := frame[0]

	if _, err := c.device.Write(frame); err != nil {
		return nil, &TransportError{Operation: operation, Err: err}
	}

	if c.config.SettleDelay > 0 {
		time.Sleep(c.config.SettleDelay)
	}

	reply := make([]byte, protocol.ReplyBufferSize)
	n, err := c.device.Read(reply)
	if err != nil {
		return nil, &TransportError{Operation: operation, Err: err}
	}
	if n < 1 {
		return nil, &EmptyReplyError{Operation: operation}
	}

	if reply[0] != opcode {
		return nil, &EchoMismatchError{Want: opcode, Got: reply[0]}
	}

	data := reply[1:n]
	if len(data) > maxLen {
		data = data[:maxLen]
	}
	return data, nil
}

// executeStatus sends a command whose reply is a single status byte and
// checks it for acceptance.
func (c *Cartridge) executeStatus(ctx context.Context, operation string, frame []byte) error {
	data, err := c.execute(ctx, operation, frame, 1)
	if err != nil {
		return err
	}
	return protocol.ParseStatus(operation, data)
}

// logDebug logs a debug message if a logger is configured.
func (c *Cartridge) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Cartridge) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Cartridge) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}

// reportProgress calls the progress callback if configured.
func (c *Cartridge) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}
