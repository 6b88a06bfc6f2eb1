// Package cartridge provides a high-level client for the Croco Cartridge,
// a USB-attached flash cartridge that stores multiple Game Boy ROM images
// and their save RAM.
//
// # Overview
//
// The Cartridge type drives the command/reply protocol over an open USB
// device and exposes:
//   - Catalog operations: utilization, slot listing, slot metadata, delete,
//     device identity
//   - Bulk transfers: ROM upload, save download, save upload
//
// # Basic Usage
//
//	dev, err := usbdev.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	cart := cartridge.New(dev)
//
//	util, slots, err := cart.ListSlots(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d game(s), %d/%d banks used\n",
//	    util.NumROMs, util.UsedBanks, util.MaxBanks)
//
// # Bulk Transfers
//
// ROM images and save RAM move in 32-byte chunks, thousands of them per
// transfer, each acknowledged individually. A transfer is therefore a long
// blocking call; progress is observable through a callback and cancellation
// takes effect between chunks:
//
//	cart := cartridge.New(dev,
//	    cartridge.WithProgressCallback(func(p cartridge.Progress) {
//	        fmt.Printf("\r[%s] %.1f%%", p.Phase, p.Percentage)
//	    }),
//	)
//	err := cart.UploadROM(ctx, "TETRIS", romBytes)
//
// The protocol has no resume capability. Any failure aborts the transfer and
// the only recovery is to restart it from the beginning.
//
// # Slot Lifetime
//
// Slot IDs are device-assigned and may be compacted and reassigned by a
// delete. Treat a Slot as valid only within the listing snapshot it came
// from, and re-list before acting on one after any mutation.
//
// # Error Handling
//
// The package provides structured error types:
//   - TransportError: the USB channel itself failed (fatal)
//   - EmptyReplyError: the device produced no reply within the timeout
//   - EchoMismatchError: reply did not echo the command opcode (fatal
//     desynchronization)
//   - OversizedCommandError: command frame over the 65-byte wire limit
//   - DesyncError: inbound chunk indices drifted from the host cursor
//   - protocol.StatusError: device-level rejection, code surfaced verbatim
//   - protocol.ShortReplyError: reply too short for the operation
//
// Nothing is retried automatically; every failure aborts the in-flight
// operation and the caller decides whether to start over.
//
// # Hardware Independence
//
// This package does not open USB devices itself. It takes any io.ReadWriter
// whose Read returns (0, nil) on a receive timeout — the usbdev package
// provides that for real hardware, and tests script a mock.
package cartridge
