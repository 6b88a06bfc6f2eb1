// Package protocol implements the Croco Cartridge USB command protocol.
//
// This package provides functions to build command frames and parse reply
// payloads for the cartridge firmware. It performs no I/O; the cartridge
// package drives the exchange.
//
// # Protocol Overview
//
// Every exchange is a single command frame followed by a single reply:
//
//	Command: [OPCODE][PAYLOAD(0..64)]
//	Reply:   [ECHO][DATA(0..127)]
//
// The first byte of every reply echoes the opcode of the command that
// produced it; the echo byte is the protocol's only desynchronization guard.
// All multi-byte integers on the wire are big-endian, with one exception:
// the raw flash-usage counter in the utilization reply (see
// ParseUtilization).
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame := protocol.BuildSlotInfoCmd(slotID)
//	frame, err := protocol.BuildROMUploadRequestCmd(banks, name)
//	// ... etc
//
// # Reply Parsers
//
// Reply parsers operate on the payload portion of a reply, after the caller
// has validated and stripped the echo byte:
//
//	util, err := protocol.ParseUtilization(data)
//	slot, err := protocol.ParseSlotInfo(id, data)
//	// ... etc
//
// # Error Handling
//
// Two typed errors cover the wire-level failure modes this package can
// detect: StatusError for a device-level rejection (nonzero status byte,
// code surfaced verbatim) and ShortReplyError for a reply that carries fewer
// payload bytes than the operation requires.
//
// # Bulk Transfers
//
// ROM images and save RAM move in 32-byte chunks tagged with big-endian
// (bank, chunk) indices. A ROM bank is 16 KiB (512 chunks); a save-RAM bank
// is 8 KiB (256 chunks). The chunked exchange itself, including the
// synchronization checks, lives in the cartridge package.
package protocol
