package protocol

// Utilization contains device-wide storage counters.
// Returned by the Utilization command.
type Utilization struct {
	// NumROMs is the number of slots currently in use
	NumROMs int

	// UsedBanks is the number of 16 KiB flash banks in use
	UsedBanks int

	// MaxBanks is the flash capacity in banks (firmware constant)
	MaxBanks int
}

// Slot describes one stored ROM entry.
// Returned by the Slot Info command.
//
// Slot IDs are device-assigned and dense (0..NumROMs-1) but are not stable
// across deletes: the device may compact and reassign them. A Slot is only
// valid within the listing snapshot it was fetched in; re-query before
// acting on a stale ID.
type Slot struct {
	// ID is the zero-based slot index within one listing snapshot
	ID byte

	// Name is the display name, at most SlotNameSize bytes
	Name string

	// NumROMBanks is the ROM size in 32 KiB cartridge banks
	// (0 when the firmware reply omits the field)
	NumROMBanks uint16

	// NumRAMBanks is the save-RAM size in 8 KiB banks; 0 means no save data
	NumRAMBanks byte

	// MBC is the memory-bank-controller type byte (MBCUnknown when the
	// firmware reply omits the field)
	MBC byte
}

// Identity contains firmware and hardware identification.
// Assembled from the Identity and Serial ID commands.
type Identity struct {
	// FeatureStep is the firmware feature step
	FeatureStep byte

	// HWVersion is the hardware revision
	HWVersion byte

	// SWMajor, SWMinor, SWPatch form the firmware version number
	SWMajor byte
	SWMinor byte
	SWPatch byte

	// BuildTag is a single printable build tag character
	BuildTag byte

	// GitShortHash is the short hash of the firmware build commit
	GitShortHash uint32

	// GitDirty reports whether the firmware was built from a dirty tree
	GitDirty bool

	// Serial is the 8-byte device serial number, or nil when the device
	// did not report one
	Serial []byte
}
