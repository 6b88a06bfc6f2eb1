package cartridge

import "time"

// Config holds the cartridge client configuration.
type Config struct {
	// ProgressCallback is called during bulk transfers to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// SettleDelay is the pause between sending a command and reading its
	// reply. The firmware needs a short post-send delay before it has
	// prepared a reply; the default matches observed firmware behavior.
	SettleDelay time.Duration

	// SlotScanDelay is the pause between consecutive slot-info queries
	// during a listing scan
	SlotScanDelay time.Duration

	// SerialDelay is the pause between the identity and serial-id queries
	SerialDelay time.Duration
}

// defaultConfig returns the default configuration. The delays are empirically
// chosen firmware-compatibility values, not protocol-derived; newer firmware
// may tolerate shorter ones.
func defaultConfig() Config {
	return Config{
		SettleDelay:   10 * time.Millisecond,
		SlotScanDelay: 10 * time.Millisecond,
		SerialDelay:   50 * time.Millisecond,
	}
}

// Option is a functional option for configuring the cartridge client.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	cart := cartridge.New(device,
//	    cartridge.WithProgressCallback(func(p cartridge.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for cartridge operations.
//
// Example:
//
//	cart := cartridge.New(device, cartridge.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSettleDelay sets the post-send settle delay.
// Default is 10ms.
//
// Example:
//
//	cart := cartridge.New(device, cartridge.WithSettleDelay(5*time.Millisecond))
func WithSettleDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.SettleDelay = delay
		}
	}
}

// WithSlotScanDelay sets the pause between slot-info queries during a
// listing scan. Default is 10ms.
func WithSlotScanDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.SlotScanDelay = delay
		}
	}
}
