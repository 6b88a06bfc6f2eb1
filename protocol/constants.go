package protocol

// Command opcodes understood by the cartridge firmware.
const (
	// CmdUtilization queries slot count and flash usage
	CmdUtilization = 0x01

	// CmdRequestROMUpload starts a ROM flash sequence
	CmdRequestROMUpload = 0x02

	// CmdROMChunk carries one 32-byte ROM chunk to the device
	CmdROMChunk = 0x03

	// CmdSlotInfo queries metadata for one ROM slot
	CmdSlotInfo = 0x04

	// CmdDeleteSlot removes a ROM slot and its save data
	CmdDeleteSlot = 0x05

	// CmdRequestSaveDownload starts a save-RAM read sequence
	CmdRequestSaveDownload = 0x06

	// CmdSaveReadChunk fetches one 32-byte save chunk from the device
	CmdSaveReadChunk = 0x07

	// CmdRequestSaveUpload starts a save-RAM write sequence
	CmdRequestSaveUpload = 0x08

	// CmdSaveWriteChunk carries one 32-byte save chunk to the device
	CmdSaveWriteChunk = 0x09

	// CmdRTCGet reads the real-time clock (reserved, not implemented here)
	CmdRTCGet = 0x0A

	// CmdRTCSet sets the real-time clock (reserved, not implemented here)
	CmdRTCSet = 0x0B

	// CmdSerialID queries the 8-byte device serial number
	CmdSerialID = 0xFD

	// CmdIdentity queries firmware and hardware version information
	CmdIdentity = 0xFE
)

// Frame size limits. A command frame is one opcode byte followed by up to
// MaxPayloadSize payload bytes; a reply is one echo byte followed by up to
// 127 data bytes.
const (
	// MaxPayloadSize is the maximum command payload size in bytes
	MaxPayloadSize = 64

	// MaxCommandSize is the maximum command frame size: opcode + payload
	MaxCommandSize = 1 + MaxPayloadSize

	// ReplyBufferSize is the buffer size for reading replies
	ReplyBufferSize = 128
)

// Bulk transfer geometry. ROM flash space is addressed in 16 KiB banks,
// save RAM in 8 KiB banks; both move over the wire in 32-byte chunks.
const (
	// ChunkSize is the data payload of a single transfer chunk
	ChunkSize = 32

	// ChunkFrameSize is bank(2) + chunk(2) + data(32)
	ChunkFrameSize = 4 + ChunkSize

	// ROMBankSize is the size of one ROM bank in bytes
	ROMBankSize = 16384

	// ROMChunksPerBank is ROMBankSize / ChunkSize
	ROMChunksPerBank = ROMBankSize / ChunkSize

	// SaveBankSize is the size of one save-RAM bank in bytes
	SaveBankSize = 8192

	// SaveChunksPerBank is SaveBankSize / ChunkSize
	SaveChunksPerBank = SaveBankSize / ChunkSize
)

// SlotNameSize is the fixed width of the slot name field.
// Shorter names are NUL-padded on the wire.
const SlotNameSize = 17

// SpeedSwitchNone marks the speed-switch bank field of a ROM upload request
// as not applicable for this device generation.
const SpeedSwitchNone = 0xFFFF

// MaxBanks is the flash capacity of the cartridge in ROM banks.
// Firmware-defined; the device does not report it.
const MaxBanks = 888

// StatusAccepted is the status byte returned by the device when a request
// or chunk was accepted. Any other value is a device-level rejection.
const StatusAccepted = 0x00

// Minimum reply payload sizes (after the echo byte is stripped).
const (
	// UtilizationMinSize covers num_roms(1) + raw bank usage(2) and padding
	UtilizationMinSize = 5

	// SlotInfoMinSize covers name(17) + ram banks(1); MBC type and ROM bank
	// count are optional trailing fields on legacy firmware
	SlotInfoMinSize = 18

	// IdentityMinSize covers feature step, HW version, SW version, build tag,
	// git short hash and dirty flag
	IdentityMinSize = 11

	// SerialIDSize is the size of the device serial number
	SerialIDSize = 8
)

// MBCUnknown is the memory-bank-controller type reported for slots whose
// firmware predates the MBC field in the slot-info reply.
const MBCUnknown = 0xFF
