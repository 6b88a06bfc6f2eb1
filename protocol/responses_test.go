package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantErr  bool
		wantCode byte
	}{
		{
			name: "accepted",
			data: []byte{0x00},
		},
		{
			name: "accepted with trailing bytes",
			data: []byte{0x00, 0xAA},
		},
		{
			name:     "rejected",
			data:     []byte{0x03},
			wantErr:  true,
			wantCode: 0x03,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseStatus("test op", tt.data)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if tt.wantCode != 0 {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("error type = %T, want *StatusError", err)
				}
				if statusErr.Code != tt.wantCode {
					t.Errorf("code = 0x%02X, want 0x%02X", statusErr.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestParseUtilization(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantErr   bool
		wantROMs  int
		wantBanks int
	}{
		{
			// The device reports usage in 256-byte units: raw 256 is one bank.
			name:      "two roms one bank",
			data:      []byte{2, 0x00, 0x01, 0x00, 0x00},
			wantROMs:  2,
			wantBanks: 1,
		},
		{
			name:      "empty cartridge",
			data:      []byte{0, 0x00, 0x00, 0x00, 0x00},
			wantROMs:  0,
			wantBanks: 0,
		},
		{
			name:      "raw value rounds down",
			data:      []byte{1, 0xFF, 0x01, 0x00, 0x00}, // raw = 511
			wantROMs:  1,
			wantBanks: 1,
		},
		{
			name:    "short reply",
			data:    []byte{2, 0x00, 0x01, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			util, err := ParseUtilization(tt.data)

			if tt.wantErr {
				var shortErr *ShortReplyError
				if !errors.As(err, &shortErr) {
					t.Fatalf("error = %v, want *ShortReplyError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if util.NumROMs != tt.wantROMs {
				t.Errorf("NumROMs = %d, want %d", util.NumROMs, tt.wantROMs)
			}
			if util.UsedBanks != tt.wantBanks {
				t.Errorf("UsedBanks = %d, want %d", util.UsedBanks, tt.wantBanks)
			}
			if util.MaxBanks != MaxBanks {
				t.Errorf("MaxBanks = %d, want %d", util.MaxBanks, MaxBanks)
			}
		})
	}
}

func TestParseSlotInfo(t *testing.T) {
	name := func(s string) []byte {
		field := make([]byte, SlotNameSize)
		copy(field, s)
		return field
	}

	tests := []struct {
		name         string
		data         []byte
		wantErr      bool
		wantName     string
		wantRAMBanks byte
		wantMBC      byte
		wantROMBanks uint16
	}{
		{
			name:         "full 21-byte reply",
			data:         append(name("POKEMON RED"), 4, 0x1B, 0x40, 0x00), // ram=4 mbc=0x1B rom=64 LE
			wantName:     "POKEMON RED",
			wantRAMBanks: 4,
			wantMBC:      0x1B,
			wantROMBanks: 64,
		},
		{
			// Legacy firmware stops after the RAM bank count.
			name:         "18-byte legacy reply",
			data:         append(name("TETRIS"), 0),
			wantName:     "TETRIS",
			wantRAMBanks: 0,
			wantMBC:      MBCUnknown,
			wantROMBanks: 0,
		},
		{
			name:         "19-byte reply with mbc only",
			data:         append(name("ZELDA"), 1, 0x03),
			wantName:     "ZELDA",
			wantRAMBanks: 1,
			wantMBC:      0x03,
			wantROMBanks: 0,
		},
		{
			name:    "17 bytes is a hard failure",
			data:    name("TRUNCATED"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := ParseSlotInfo(3, tt.data)

			if tt.wantErr {
				var shortErr *ShortReplyError
				if !errors.As(err, &shortErr) {
					t.Fatalf("error = %v, want *ShortReplyError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if slot.ID != 3 {
				t.Errorf("ID = %d, want 3", slot.ID)
			}
			if slot.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", slot.Name, tt.wantName)
			}
			if slot.NumRAMBanks != tt.wantRAMBanks {
				t.Errorf("NumRAMBanks = %d, want %d", slot.NumRAMBanks, tt.wantRAMBanks)
			}
			if slot.MBC != tt.wantMBC {
				t.Errorf("MBC = 0x%02X, want 0x%02X", slot.MBC, tt.wantMBC)
			}
			if slot.NumROMBanks != tt.wantROMBanks {
				t.Errorf("NumROMBanks = %d, want %d", slot.NumROMBanks, tt.wantROMBanks)
			}
		})
	}
}

func TestParseIdentity(t *testing.T) {
	data := []byte{3, 2, 1, 4, 7, 'b', 0xDE, 0xAD, 0xBE, 0xEF, 1}

	id, err := ParseIdentity(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id.FeatureStep != 3 || id.HWVersion != 2 {
		t.Errorf("step/hw = %d/%d, want 3/2", id.FeatureStep, id.HWVersion)
	}
	if id.SWMajor != 1 || id.SWMinor != 4 || id.SWPatch != 7 {
		t.Errorf("version = %d.%d.%d, want 1.4.7", id.SWMajor, id.SWMinor, id.SWPatch)
	}
	if id.BuildTag != 'b' {
		t.Errorf("build tag = %c, want b", id.BuildTag)
	}
	if id.GitShortHash != 0xDEADBEEF {
		t.Errorf("git hash = 0x%08X, want 0xDEADBEEF", id.GitShortHash)
	}
	if !id.GitDirty {
		t.Error("GitDirty = false, want true")
	}
	if id.Serial != nil {
		t.Errorf("Serial = %v, want nil", id.Serial)
	}

	if _, err := ParseIdentity(data[:10]); err == nil {
		t.Error("expected error for 10-byte reply, got nil")
	}
}

func TestParseSerialID(t *testing.T) {
	serial := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	got, err := ParseSerialID(append(serial, 0xAA, 0xBB))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, serial) {
		t.Errorf("serial = %v, want %v", got, serial)
	}

	if _, err := ParseSerialID(serial[:7]); err == nil {
		t.Error("expected error for 7-byte reply, got nil")
	}
}

func TestParseChunkReply(t *testing.T) {
	data := make([]byte, ChunkFrameSize)
	data[0], data[1] = 0x00, 0x03 // bank 3
	data[2], data[3] = 0x00, 0xFF // chunk 255
	for i := 4; i < len(data); i++ {
		data[i] = byte(i)
	}

	bank, chunk, payload, err := ParseChunkReply(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank != 3 {
		t.Errorf("bank = %d, want 3", bank)
	}
	if chunk != 255 {
		t.Errorf("chunk = %d, want 255", chunk)
	}
	if len(payload) != ChunkSize {
		t.Errorf("payload length = %d, want %d", len(payload), ChunkSize)
	}
	if !bytes.Equal(payload, data[4:]) {
		t.Error("payload does not match frame data")
	}

	if _, _, _, err := ParseChunkReply(data[:35]); err == nil {
		t.Error("expected error for 35-byte reply, got nil")
	}
}
