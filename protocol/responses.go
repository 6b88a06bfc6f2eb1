package protocol

import (
	"bytes"
	"encoding/binary"
)

// ParseStatus interprets a single-byte status reply.
// Returns nil when the device accepted the request, a ShortReplyError when
// the reply carries no status byte, and a StatusError carrying the verbatim
// code on rejection.
func ParseStatus(operation string, data []byte) error {
	if len(data) < 1 {
		return &ShortReplyError{Operation: operation, Got: len(data), Min: 1}
	}
	if data[0] != StatusAccepted {
		return &StatusError{Operation: operation, Code: data[0]}
	}
	return nil
}

// ParseUtilization parses the Utilization command reply.
//
// Data format (UtilizationMinSize bytes minimum):
//
//	[NUM_ROMS(1)][RAW_USAGE(2)][...]
//
// The device reports flash usage in 256-byte units as a mixed-endian 16-bit
// value; the bank count is (data[2]<<8 | data[1]) / 256. The rescaling is
// part of the wire contract.
func ParseUtilization(data []byte) (*Utilization, error) {
	if len(data) < UtilizationMinSize {
		return nil, &ShortReplyError{Operation: "utilization", Got: len(data), Min: UtilizationMinSize}
	}

	raw := uint16(data[2])<<8 | uint16(data[1])
	return &Utilization{
		NumROMs:   int(data[0]),
		UsedBanks: int(raw / 256),
		MaxBanks:  MaxBanks,
	}, nil
}

// ParseSlotInfo parses the Slot Info command reply for the given slot ID.
//
// Data format:
//
//	[NAME(17)][RAM_BANKS(1)][MBC(1)][ROM_BANKS_L(1)][ROM_BANKS_H(1)]
//
// Replies from legacy firmware may stop after the RAM bank count; the MBC
// type then defaults to MBCUnknown and the ROM bank count to 0. Fewer than
// SlotInfoMinSize bytes is a hard failure for this slot.
func ParseSlotInfo(id byte, data []byte) (*Slot, error) {
	if len(data) < SlotInfoMinSize {
		return nil, &ShortReplyError{Operation: "slot info", Got: len(data), Min: SlotInfoMinSize}
	}

	slot := &Slot{
		ID:          id,
		Name:        decodeName(data[:SlotNameSize]),
		NumRAMBanks: data[17],
		MBC:         MBCUnknown,
	}

	if len(data) > 18 {
		slot.MBC = data[18]
	}
	if len(data) > 20 {
		slot.NumROMBanks = uint16(data[20])<<8 | uint16(data[19])
	}

	return slot, nil
}

// ParseIdentity parses the Identity command reply.
//
// Data format (IdentityMinSize bytes minimum):
//
//	[STEP(1)][HW(1)][MAJOR(1)][MINOR(1)][PATCH(1)][TAG(1)][GIT_HASH(4)][DIRTY(1)]
//
// The serial number comes from a separate command; the returned Identity has
// a nil Serial.
func ParseIdentity(data []byte) (*Identity, error) {
	if len(data) < IdentityMinSize {
		return nil, &ShortReplyError{Operation: "identity", Got: len(data), Min: IdentityMinSize}
	}

	return &Identity{
		FeatureStep:  data[0],
		HWVersion:    data[1],
		SWMajor:      data[2],
		SWMinor:      data[3],
		SWPatch:      data[4],
		BuildTag:     data[5],
		GitShortHash: binary.BigEndian.Uint32(data[6:10]),
		GitDirty:     data[10] != 0,
	}, nil
}

// ParseSerialID parses the Serial ID command reply.
// Returns the 8-byte serial number, or a ShortReplyError when the device
// did not report one. Callers treat the short reply as a graceful absence.
func ParseSerialID(data []byte) ([]byte, error) {
	if len(data) < SerialIDSize {
		return nil, &ShortReplyError{Operation: "serial id", Got: len(data), Min: SerialIDSize}
	}

	serial := make([]byte, SerialIDSize)
	copy(serial, data)
	return serial, nil
}

// ParseChunkReply parses an inbound data chunk reply.
//
// Data format (ChunkFrameSize bytes):
//
//	[BANK_H][BANK_L][CHUNK_H][CHUNK_L][DATA(32)]
//
// The bank and chunk indices report the device's internal transfer cursor;
// callers verify them against the expected position.
func ParseChunkReply(data []byte) (bank, chunk uint16, payload []byte, err error) {
	if len(data) < ChunkFrameSize {
		return 0, 0, nil, &ShortReplyError{Operation: "save read chunk", Got: len(data), Min: ChunkFrameSize}
	}

	bank = binary.BigEndian.Uint16(data[0:2])
	chunk = binary.BigEndian.Uint16(data[2:4])
	payload = data[4:ChunkFrameSize]
	return bank, chunk, payload, nil
}

// decodeName trims a fixed-width NUL-padded name field.
func decodeName(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
