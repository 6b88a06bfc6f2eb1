// Package usbdev opens the Croco Cartridge USB device and exposes it as an
// io.ReadWriter for the cartridge package.
//
// Discovery claims the vendor-specific interface (class 0xFF) carrying one
// bulk-IN and one bulk-OUT endpoint, detaches any kernel driver, and issues
// the CDC SET_CONTROL_LINE_STATE request the firmware expects before it
// starts answering commands.
//
// Bulk reads and writes carry a fixed per-call timeout. A read that times
// out returns (0, nil) rather than an error: the command layer treats "no
// bytes within the timeout" as an empty reply, distinct from a broken
// channel.
package usbdev

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// Fixed USB identity of the Croco Cartridge.
const (
	// VendorID is the USB vendor ID (Raspberry Pi)
	VendorID = 0x2E8A

	// ProductID is the USB product ID of the cartridge
	ProductID = 0x107F
)

// DefaultTimeout is the per-transfer timeout for bulk reads and writes.
// Empirically chosen for firmware compatibility.
const DefaultTimeout = 5 * time.Second

// cdcSetControlLineState is the CDC class request the firmware expects after
// the interface is claimed; value 1 asserts DTR.
const cdcSetControlLineState = 0x22

// ErrNotFound is returned by Open when no cartridge is attached.
var ErrNotFound = errors.New("croco cartridge not found (2e8a:107f)")

// Device is an open cartridge USB handle. It owns the libusb context, the
// device, the claimed interface and both bulk endpoints; Close releases all
// of them. Exactly one Device should be open per process invocation.
type Device struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	in      *gousb.InEndpoint
	out     *gousb.OutEndpoint
	timeout time.Duration
}

// Option is a functional option for configuring the device handle.
type Option func(*Device)

// WithTimeout sets the per-transfer timeout for bulk reads and writes.
// Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// Open finds the cartridge on the bus, claims its vendor-specific interface
// and prepares both bulk endpoints. Returns ErrNotFound when no cartridge is
// attached. The caller must Close the returned device on every exit path.
func Open(opts ...Option) (*Device, error) {
	d := &Device{
		ctx:     gousb.NewContext(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.open(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) open() error {
	dev, err := d.ctx.OpenDeviceWithVIDPID(VendorID, ProductID)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	if dev == nil {
		return ErrNotFound
	}
	d.dev = dev

	// The vendor interface may be bound to a kernel CDC driver.
	if err := dev.SetAutoDetach(true); err != nil {
		return fmt.Errorf("enable kernel driver detach: %w", err)
	}

	cfgNum, intfNum, altNum, ok := findVendorInterface(dev.Desc)
	if !ok {
		return fmt.Errorf("device has no vendor-specific interface with bulk endpoints")
	}

	cfg, err := dev.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("claim config %d: %w", cfgNum, err)
	}
	d.cfg = cfg

	intf, err := cfg.Interface(intfNum, altNum)
	if err != nil {
		return fmt.Errorf("claim interface %d: %w", intfNum, err)
	}
	d.intf = intf

	inNum, outNum, err := bulkEndpoints(intf.Setting)
	if err != nil {
		return err
	}
	if d.in, err = intf.InEndpoint(inNum); err != nil {
		return fmt.Errorf("open bulk-in endpoint %d: %w", inNum, err)
	}
	if d.out, err = intf.OutEndpoint(outNum); err != nil {
		return fmt.Errorf("open bulk-out endpoint %d: %w", outNum, err)
	}

	// CDC line-state setup; the firmware ignores commands until DTR is set.
	_, err = dev.Control(
		gousb.ControlOut|gousb.ControlClass|gousb.ControlInterface,
		cdcSetControlLineState,
		1,
		uint16(intfNum),
		nil,
	)
	if err != nil {
		return fmt.Errorf("set control line state: %w", err)
	}

	return nil
}

// findVendorInterface walks the device's configurations for the first
// vendor-specific (class 0xFF) alternate setting.
func findVendorInterface(desc *gousb.DeviceDesc) (cfgNum, intfNum, altNum int, ok bool) {
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassVendorSpec {
					return cfg.Number, intf.Number, alt.Alternate, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// bulkEndpoints resolves the interface's bulk endpoint pair.
func bulkEndpoints(setting gousb.InterfaceSetting) (inNum, outNum int, err error) {
	inNum, outNum = -1, -1
	for _, ep := range setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionIn {
			inNum = ep.Number
		} else {
			outNum = ep.Number
		}
	}
	if inNum < 0 || outNum < 0 {
		return 0, 0, fmt.Errorf("interface lacks a bulk endpoint pair (in=%d out=%d)", inNum, outNum)
	}
	return inNum, outNum, nil
}

// Write sends p over the bulk-OUT endpoint.
func (d *Device) Write(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.out.WriteContext(ctx, p)
}

// Read fills p from the bulk-IN endpoint. A transfer that times out returns
// the bytes received so far (possibly zero) with a nil error; the device may
// be slow rather than broken, and the command layer decides what that means.
func (d *Device) Read(p []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	n, err := d.in.ReadContext(ctx, p)
	if err != nil && isTimeout(err) {
		return n, nil
	}
	return n, err
}

// isTimeout reports whether a bulk transfer error means "nothing arrived in
// time" as opposed to a broken channel. gousb surfaces a libusb-level
// timeout as TransferTimedOut and a context-deadline cancellation as either
// TransferCancelled or the context error.
func isTimeout(err error) bool {
	return errors.Is(err, gousb.TransferTimedOut) ||
		errors.Is(err, gousb.TransferCancelled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// String identifies the device for banners and logs.
func (d *Device) String() string {
	if d.dev == nil {
		return fmt.Sprintf("%04x:%04x (closed)", VendorID, ProductID)
	}
	return fmt.Sprintf("%04x:%04x bus %d addr %d",
		VendorID, ProductID, d.dev.Desc.Bus, d.dev.Desc.Address)
}

// Close releases the interface, configuration, device handle and libusb
// context. Safe to call on a partially opened device.
func (d *Device) Close() error {
	var firstErr error

	if d.intf != nil {
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		if err := d.cfg.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.cfg = nil
	}
	if d.dev != nil {
		if err := d.dev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.dev = nil
	}
	if d.ctx != nil {
		if err := d.ctx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.ctx = nil
	}
	return firstErr
}
