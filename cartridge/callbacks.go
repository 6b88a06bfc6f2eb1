package cartridge

import "time"

// Transfer phases reported through ProgressCallback.
const (
	// PhaseHandshake is the request/accept exchange before streaming
	PhaseHandshake = "handshake"

	// PhaseTransfer is the chunk streaming loop
	PhaseTransfer = "transfer"

	// PhaseComplete means all banks were exchanged without failure
	PhaseComplete = "complete"
)

// Progress contains information about an in-flight bulk transfer.
// Passed to ProgressCallback during ROM and save transfers.
type Progress struct {
	// Phase is the current transfer phase (see the Phase* constants)
	Phase string

	// CurrentBank is the number of banks fully exchanged so far
	CurrentBank int

	// TotalBanks is the total number of banks in this transfer
	TotalBanks int

	// Bytes is the number of payload bytes moved so far
	Bytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Elapsed is the time since the handshake was issued
	Elapsed time.Duration
}

// ProgressCallback is called after each completed bank during a bulk
// transfer. Implementations should return quickly; the transfer blocks on
// the callback.
//
// Example:
//
//	cart := cartridge.New(device,
//	    cartridge.WithProgressCallback(func(p cartridge.Progress) {
//	        fmt.Printf("[%s] %.1f%% - bank %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentBank, p.TotalBanks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the
// cartridge client. This allows integration with any logging framework.
//
// Example with the standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	cart := cartridge.New(device, cartridge.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
