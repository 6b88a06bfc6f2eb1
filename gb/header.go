// Package gb provides Game Boy ROM image inspection for the flash path:
// header title extraction, cartridge hardware identification and declared
// size checks. It parses host-side files only; nothing here touches the
// device.
package gb

import (
	"bytes"
	"fmt"
)

// Cartridge header layout. The header occupies 0x100-0x14F of every ROM.
const (
	// HeaderEnd is the first byte past the cartridge header
	HeaderEnd = 0x150

	titleStart = 0x134
	titleEnd   = 0x143

	cartTypeOffset = 0x147
	romSizeOffset  = 0x148
	ramSizeOffset  = 0x149
	checksumOffset = 0x14D
)

// Header contains the cartridge header fields relevant to flashing.
type Header struct {
	// Title is the game title from the header, trimmed of padding.
	// Later cartridges reuse the tail of the field for manufacturer and
	// CGB codes, so the title may be shorter than the raw field.
	Title string

	// CartridgeType is the MBC/hardware code at 0x147
	CartridgeType byte

	// ROMSize is the declared ROM size in bytes (0 if the size code is
	// out of the defined range)
	ROMSize int

	// RAMSize is the declared external RAM size in bytes
	RAMSize int

	// ChecksumOK reports whether the header checksum at 0x14D matches
	ChecksumOK bool
}

// ParseHeader reads the cartridge header from a ROM image.
// The image must contain at least the full header (0x150 bytes).
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < HeaderEnd {
		return nil, fmt.Errorf("rom is %d bytes, smaller than the %d-byte cartridge header", len(rom), HeaderEnd)
	}

	h := &Header{
		Title:         decodeTitle(rom[titleStart:titleEnd]),
		CartridgeType: rom[cartTypeOffset],
		RAMSize:       ramSize(rom[ramSizeOffset]),
		ChecksumOK:    headerChecksum(rom) == rom[checksumOffset],
	}

	// ROM size code n means 32 KiB << n; codes above 8 (8 MiB) are not defined.
	if code := rom[romSizeOffset]; code <= 8 {
		h.ROMSize = 32 * 1024 << code
	}

	return h, nil
}

// decodeTitle trims NUL padding and any non-printable tail (CGB flag,
// manufacturer code) from the raw title field.
func decodeTitle(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	for len(field) > 0 {
		last := field[len(field)-1]
		if last >= 0x20 && last < 0x7F {
			break
		}
		field = field[:len(field)-1]
	}
	return string(bytes.TrimRight(field, " "))
}

// ramSize maps the RAM size code at 0x149 to bytes.
func ramSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

// headerChecksum computes the checksum over 0x134-0x14C as the boot ROM does.
func headerChecksum(rom []byte) byte {
	var sum byte
	for i := titleStart; i < checksumOffset; i++ {
		sum = sum - rom[i] - 1
	}
	return sum
}

// CartridgeTypeName returns a human-readable name for a cartridge type code.
func CartridgeTypeName(code byte) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01:
		return "MBC1"
	case 0x02:
		return "MBC1+RAM"
	case 0x03:
		return "MBC1+RAM+BATTERY"
	case 0x05:
		return "MBC2"
	case 0x06:
		return "MBC2+BATTERY"
	case 0x08:
		return "ROM+RAM"
	case 0x09:
		return "ROM+RAM+BATTERY"
	case 0x0F:
		return "MBC3+TIMER+BATTERY"
	case 0x10:
		return "MBC3+TIMER+RAM+BATTERY"
	case 0x11:
		return "MBC3"
	case 0x12:
		return "MBC3+RAM"
	case 0x13:
		return "MBC3+RAM+BATTERY"
	case 0x19:
		return "MBC5"
	case 0x1A:
		return "MBC5+RAM"
	case 0x1B:
		return "MBC5+RAM+BATTERY"
	case 0x1C:
		return "MBC5+RUMBLE"
	case 0x1D:
		return "MBC5+RUMBLE+RAM"
	case 0x1E:
		return "MBC5+RUMBLE+RAM+BATTERY"
	case 0xFF:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("TYPE 0x%02X", code)
	}
}
