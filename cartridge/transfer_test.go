package cartridge

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/crocotools/go-croco/protocol"
)

// chunkReply builds an inbound chunk reply frame (echo byte included) whose
// 32 data bytes are all fill.
func chunkReply(bank, chunk uint16, fill byte) []byte {
	frame := make([]byte, 1+protocol.ChunkFrameSize)
	frame[0] = protocol.CmdSaveReadChunk
	binary.BigEndian.PutUint16(frame[1:3], bank)
	binary.BigEndian.PutUint16(frame[3:5], chunk)
	for i := 5; i < len(frame); i++ {
		frame[i] = fill
	}
	return frame
}

func TestUploadROMChunkSequence(t *testing.T) {
	// One byte past a bank boundary forces two banks, the second nearly
	// all padding.
	rom := make([]byte, protocol.ROMBankSize+1)
	for i := range rom {
		rom[i] = byte(i)
	}
	rom[protocol.ROMBankSize] = 0x5A

	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestROMUpload, 0x00, 1)
	m.replyStatus(protocol.CmdROMChunk, 0x00, 2*protocol.ROMChunksPerBank)
	c := newTestCartridge(m)

	if err := c.UploadROM(context.Background(), "SEQ TEST", rom); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantWrites := 1 + 2*protocol.ROMChunksPerBank
	if len(m.writes) != wantWrites {
		t.Fatalf("issued %d commands, want %d", len(m.writes), wantWrites)
	}

	// Handshake carries the computed bank count, the padded name and the
	// speed-switch marker.
	handshake := m.writes[0]
	if handshake[0] != protocol.CmdRequestROMUpload {
		t.Errorf("handshake opcode = 0x%02X", handshake[0])
	}
	if banks := binary.BigEndian.Uint16(handshake[1:3]); banks != 2 {
		t.Errorf("handshake bank count = %d, want 2 (ceil of size/16384)", banks)
	}
	if handshake[20] != 0xFF || handshake[21] != 0xFF {
		t.Error("handshake speed marker missing")
	}

	// Chunks are issued in strictly increasing (bank, chunk) order.
	for i, frame := range m.writes[1:] {
		if frame[0] != protocol.CmdROMChunk {
			t.Fatalf("command %d opcode = 0x%02X, want 0x%02X", i, frame[0], protocol.CmdROMChunk)
		}
		wantBank := uint16(i / protocol.ROMChunksPerBank)
		wantChunk := uint16(i % protocol.ROMChunksPerBank)
		if binary.BigEndian.Uint16(frame[1:3]) != wantBank || binary.BigEndian.Uint16(frame[3:5]) != wantChunk {
			t.Fatalf("command %d tagged (%d,%d), want (%d,%d)", i,
				binary.BigEndian.Uint16(frame[1:3]), binary.BigEndian.Uint16(frame[3:5]),
				wantBank, wantChunk)
		}
	}

	// First chunk of bank 1 carries the single trailing byte plus padding.
	boundary := m.writes[1+protocol.ROMChunksPerBank]
	if boundary[5] != 0x5A {
		t.Errorf("boundary chunk byte 0 = 0x%02X, want 0x5A", boundary[5])
	}
	if !bytes.Equal(boundary[6:], make([]byte, protocol.ChunkSize-1)) {
		t.Error("boundary chunk tail is not zero-padded")
	}

	// Final chunk is pure padding.
	last := m.writes[len(m.writes)-1]
	if !bytes.Equal(last[5:], make([]byte, protocol.ChunkSize)) {
		t.Error("final chunk is not zero-padded")
	}
}

func TestUploadROMHandshakeRejected(t *testing.T) {
	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestROMUpload, 0x02, 1)
	c := newTestCartridge(m)

	err := c.UploadROM(context.Background(), "REJECTED", make([]byte, 512))

	var statusErr *protocol.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *protocol.StatusError", err)
	}
	if statusErr.Code != 0x02 {
		t.Errorf("code = 0x%02X, want 0x02", statusErr.Code)
	}
	if len(m.writes) != 1 {
		t.Errorf("issued %d commands after rejected handshake, want 1", len(m.writes))
	}
}

func TestUploadROMAbortsOnFirstChunkFailure(t *testing.T) {
	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestROMUpload, 0x00, 1)
	m.replyStatus(protocol.CmdROMChunk, 0x00, 5)
	m.replyStatus(protocol.CmdROMChunk, 0x09, 1)
	// Anything beyond this point would read as an empty reply; the loop
	// must never get there.
	c := newTestCartridge(m)

	err := c.UploadROM(context.Background(), "ABORT", make([]byte, protocol.ROMBankSize))

	var statusErr *protocol.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *protocol.StatusError", err)
	}
	if len(m.writes) != 1+6 {
		t.Errorf("issued %d commands, want handshake + 6 chunks", len(m.writes))
	}
}

func TestUploadROMOverCapacity(t *testing.T) {
	rom := make([]byte, (protocol.MaxBanks+1)*protocol.ROMBankSize)
	m := newMockDevice()
	c := newTestCartridge(m)

	if err := c.UploadROM(context.Background(), "HUGE", rom); err == nil {
		t.Fatal("expected capacity error, got nil")
	}
	if len(m.writes) != 0 {
		t.Error("over-capacity upload must not touch the transport")
	}
}

func TestDownloadSave(t *testing.T) {
	slot := &protocol.Slot{ID: 2, Name: "POKEMON RED", NumRAMBanks: 1}

	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestSaveDownload, 0x00, 1)
	for chunk := 0; chunk < protocol.SaveChunksPerBank; chunk++ {
		m.replies = append(m.replies, chunkReply(0, uint16(chunk), byte(chunk)))
	}
	c := newTestCartridge(m)

	var dst bytes.Buffer
	n, err := c.DownloadSave(context.Background(), slot, &dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n != protocol.SaveBankSize {
		t.Errorf("bytes = %d, want %d", n, protocol.SaveBankSize)
	}
	if dst.Len() != protocol.SaveBankSize {
		t.Errorf("destination holds %d bytes, want %d", dst.Len(), protocol.SaveBankSize)
	}
	if len(m.writes) != 1+protocol.SaveChunksPerBank {
		t.Errorf("issued %d commands, want %d", len(m.writes), 1+protocol.SaveChunksPerBank)
	}

	// Handshake targets the slot; chunk requests carry no payload.
	if !bytes.Equal(m.writes[0], []byte{protocol.CmdRequestSaveDownload, 2}) {
		t.Errorf("handshake = %v", m.writes[0])
	}
	if !bytes.Equal(m.writes[1], []byte{protocol.CmdSaveReadChunk}) {
		t.Errorf("chunk request = %v", m.writes[1])
	}

	// Chunks land in order: chunk i contributes 32 bytes of value i.
	data := dst.Bytes()
	if data[0] != 0 || data[32] != 1 || data[8191] != 255 {
		t.Errorf("destination bytes out of order: [0]=%d [32]=%d [8191]=%d", data[0], data[32], data[8191])
	}
}

func TestDownloadSaveDesync(t *testing.T) {
	slot := &protocol.Slot{ID: 0, Name: "DRIFT", NumRAMBanks: 4}

	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestSaveDownload, 0x00, 1)
	for bank := 0; bank < 2; bank++ {
		for chunk := 0; chunk < protocol.SaveChunksPerBank; chunk++ {
			m.replies = append(m.replies, chunkReply(uint16(bank), uint16(chunk), 0xEE))
		}
	}
	// Device cursor drifts: host expects bank 2, device reports bank 3.
	m.replies = append(m.replies, chunkReply(3, 0, 0xEE))
	c := newTestCartridge(m)

	var dst bytes.Buffer
	n, err := c.DownloadSave(context.Background(), slot, &dst)

	var desyncErr *DesyncError
	if !errors.As(err, &desyncErr) {
		t.Fatalf("error = %v, want *DesyncError", err)
	}
	if desyncErr.WantBank != 2 || desyncErr.GotBank != 3 {
		t.Errorf("desync = %+v, want bank 2 vs 3", desyncErr)
	}

	// Nothing from the mismatched chunk reaches the destination.
	if want := 2 * protocol.SaveBankSize; n != want || dst.Len() != want {
		t.Errorf("destination holds %d bytes (reported %d), want %d", dst.Len(), n, want)
	}
}

func TestSaveTransfersSkipSlotsWithoutRAM(t *testing.T) {
	slot := &protocol.Slot{ID: 1, Name: "NO SAVE", NumRAMBanks: 0}

	m := newMockDevice()
	c := newTestCartridge(m)

	var dst bytes.Buffer
	n, err := c.DownloadSave(context.Background(), slot, &dst)
	if err != nil || n != 0 {
		t.Errorf("download: n=%d err=%v, want 0, nil", n, err)
	}

	n, err = c.UploadSave(context.Background(), slot, []byte{1, 2, 3})
	if err != nil || n != 0 {
		t.Errorf("upload: n=%d err=%v, want 0, nil", n, err)
	}

	if len(m.writes) != 0 {
		t.Errorf("issued %d commands for a slot without save RAM, want 0", len(m.writes))
	}
}

func TestUploadSave(t *testing.T) {
	slot := &protocol.Slot{ID: 5, Name: "ZELDA", NumRAMBanks: 1}
	data := bytes.Repeat([]byte{0xAB}, 100) // much shorter than a bank

	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestSaveUpload, 0x00, 1)
	m.replyStatus(protocol.CmdSaveWriteChunk, 0x00, protocol.SaveChunksPerBank)
	c := newTestCartridge(m)

	n, err := c.UploadSave(context.Background(), slot, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != protocol.SaveBankSize {
		t.Errorf("bytes = %d, want %d (zero padding included)", n, protocol.SaveBankSize)
	}

	if !bytes.Equal(m.writes[0], []byte{protocol.CmdRequestSaveUpload, 5}) {
		t.Errorf("handshake = %v", m.writes[0])
	}

	// Fourth chunk spans the end of the source: 4 data bytes, 28 zeros.
	fourth := m.writes[4]
	if !bytes.Equal(fourth[5:9], []byte{0xAB, 0xAB, 0xAB, 0xAB}) {
		t.Errorf("chunk 3 data = %v", fourth[5:9])
	}
	if !bytes.Equal(fourth[9:], make([]byte, 28)) {
		t.Error("chunk 3 tail is not zero-padded")
	}
}

func TestUploadSaveTooLarge(t *testing.T) {
	slot := &protocol.Slot{ID: 0, Name: "SMALL", NumRAMBanks: 1}

	m := newMockDevice()
	c := newTestCartridge(m)

	_, err := c.UploadSave(context.Background(), slot, make([]byte, protocol.SaveBankSize+1))
	if err == nil {
		t.Fatal("expected size error, got nil")
	}
	if len(m.writes) != 0 {
		t.Error("oversized save must not touch the transport")
	}
}

func TestTransferProgressReporting(t *testing.T) {
	slot := &protocol.Slot{ID: 0, Name: "PROGRESS", NumRAMBanks: 2}

	m := newMockDevice()
	m.replyStatus(protocol.CmdRequestSaveUpload, 0x00, 1)
	m.replyStatus(protocol.CmdSaveWriteChunk, 0x00, 2*protocol.SaveChunksPerBank)

	var phases []string
	var lastPct float64
	c := newTestCartridge(m, WithProgressCallback(func(p Progress) {
		phases = append(phases, p.Phase)
		if p.Percentage < lastPct {
			t.Errorf("percentage went backwards: %.1f after %.1f", p.Percentage, lastPct)
		}
		lastPct = p.Percentage
	}))

	if _, err := c.UploadSave(context.Background(), slot, make([]byte, protocol.SaveBankSize)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// handshake, one report per bank, completion
	if len(phases) != 4 {
		t.Fatalf("got %d progress reports, want 4", len(phases))
	}
	if phases[0] != PhaseHandshake || phases[1] != PhaseTransfer || phases[3] != PhaseComplete {
		t.Errorf("phases = %v", phases)
	}
	if lastPct != 100 {
		t.Errorf("final percentage = %.1f, want 100", lastPct)
	}
}
