package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildUtilizationCmd constructs a Utilization command frame.
//
// Frame structure:
//
//	[0x01]
func BuildUtilizationCmd() []byte {
	return []byte{CmdUtilization}
}

// BuildSlotInfoCmd constructs a Slot Info command frame for the given slot.
//
// Frame structure:
//
//	[0x04][SLOT_ID]
func BuildSlotInfoCmd(id byte) []byte {
	return []byte{CmdSlotInfo, id}
}

// BuildDeleteSlotCmd constructs a Delete Slot command frame.
//
// Frame structure:
//
//	[0x05][SLOT_ID]
func BuildDeleteSlotCmd(id byte) []byte {
	return []byte{CmdDeleteSlot, id}
}

// BuildROMUploadRequestCmd constructs a Request ROM Upload command frame.
// The name is NUL-padded to SlotNameSize bytes; longer names are rejected.
// The trailing speed-switch bank field is fixed to SpeedSwitchNone for this
// device generation.
//
// Frame structure:
//
//	[0x02][BANKS_H][BANKS_L][NAME(17)][0xFF][0xFF]
func BuildROMUploadRequestCmd(totalBanks uint16, name string) ([]byte, error) {
	if totalBanks == 0 {
		return nil, fmt.Errorf("total bank count cannot be zero")
	}
	if len(name) > SlotNameSize {
		return nil, fmt.Errorf("name %q exceeds %d bytes", name, SlotNameSize)
	}

	frame := make([]byte, 0, 1+2+SlotNameSize+2)
	frame = append(frame, CmdRequestROMUpload)
	frame = binary.BigEndian.AppendUint16(frame, totalBanks)

	frame = append(frame, name...)
	for i := len(name); i < SlotNameSize; i++ {
		frame = append(frame, 0)
	}

	frame = binary.BigEndian.AppendUint16(frame, SpeedSwitchNone)
	return frame, nil
}

// BuildSaveDownloadRequestCmd constructs a Request Save Download command frame.
//
// Frame structure:
//
//	[0x06][SLOT_ID]
func BuildSaveDownloadRequestCmd(id byte) []byte {
	return []byte{CmdRequestSaveDownload, id}
}

// BuildSaveUploadRequestCmd constructs a Request Save Upload command frame.
//
// Frame structure:
//
//	[0x08][SLOT_ID]
func BuildSaveUploadRequestCmd(id byte) []byte {
	return []byte{CmdRequestSaveUpload, id}
}

// BuildChunkCmd constructs an outbound data chunk command frame for the given
// chunk opcode (CmdROMChunk or CmdSaveWriteChunk). The data must be exactly
// ChunkSize bytes; callers pad the tail of a short source with zero bytes.
//
// Frame structure:
//
//	[OPCODE][BANK_H][BANK_L][CHUNK_H][CHUNK_L][DATA(32)]
func BuildChunkCmd(opcode byte, bank, chunk uint16, data []byte) ([]byte, error) {
	if len(data) != ChunkSize {
		return nil, fmt.Errorf("chunk data must be exactly %d bytes, got %d", ChunkSize, len(data))
	}

	frame := make([]byte, 0, 1+ChunkFrameSize)
	frame = append(frame, opcode)
	frame = binary.BigEndian.AppendUint16(frame, bank)
	frame = binary.BigEndian.AppendUint16(frame, chunk)
	frame = append(frame, data...)
	return frame, nil
}

// BuildSaveReadChunkCmd constructs a Save Read Chunk command frame.
// The device answers with the chunk at its own internal cursor.
//
// Frame structure:
//
//	[0x07]
func BuildSaveReadChunkCmd() []byte {
	return []byte{CmdSaveReadChunk}
}

// BuildIdentityCmd constructs an Identity command frame.
//
// Frame structure:
//
//	[0xFE]
func BuildIdentityCmd() []byte {
	return []byte{CmdIdentity}
}

// BuildSerialIDCmd constructs a Serial ID command frame.
//
// Frame structure:
//
//	[0xFD]
func BuildSerialIDCmd() []byte {
	return []byte{CmdSerialID}
}
