package cartridge

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/crocotools/go-croco/protocol"
)

// transferSpec parameterizes the chunked transfer loop. The three bulk
// transfers (ROM upload, save upload, save download) share one engine and
// differ only in direction, bank geometry and the chunk opcode, which
// guarantees identical synchronization and abort behavior across all three.
type transferSpec struct {
	// operation names the transfer in errors and logs
	operation string

	// bankSize is the bank size in bytes
	bankSize int

	// chunksPerBank is bankSize / protocol.ChunkSize
	chunksPerBank int

	// chunkCmd is the per-chunk opcode
	chunkCmd byte
}

var (
	romUploadSpec = transferSpec{
		operation:     "rom upload",
		bankSize:      protocol.ROMBankSize,
		chunksPerBank: protocol.ROMChunksPerBank,
		chunkCmd:      protocol.CmdROMChunk,
	}

	saveUploadSpec = transferSpec{
		operation:     "save upload",
		bankSize:      protocol.SaveBankSize,
		chunksPerBank: protocol.SaveChunksPerBank,
		chunkCmd:      protocol.CmdSaveWriteChunk,
	}

	saveDownloadSpec = transferSpec{
		operation:     "save download",
		bankSize:      protocol.SaveBankSize,
		chunksPerBank: protocol.SaveChunksPerBank,
		chunkCmd:      protocol.CmdSaveReadChunk,
	}
)

// UploadROM flashes a ROM image to a new slot. The bank count is
// ceil(len(rom)/16384); the final bank is zero-padded on the wire. Names
// longer than the 17-byte slot name field are truncated.
//
// The transfer is all-or-nothing: the protocol has no resume capability, so
// any failure aborts immediately and a retry must restart from bank 0.
// Cancellation via ctx takes effect between chunks.
func (c *Cartridge) UploadROM(ctx context.Context, name string, rom []byte) error {
	if len(rom) == 0 {
		return fmt.Errorf("rom image is empty")
	}

	totalBanks := (len(rom) + protocol.ROMBankSize - 1) / protocol.ROMBankSize
	if totalBanks > protocol.MaxBanks {
		return fmt.Errorf("rom needs %d banks, cartridge capacity is %d", totalBanks, protocol.MaxBanks)
	}

	if len(name) > protocol.SlotNameSize {
		c.logDebug("truncating slot name", "name", name)
		name = name[:protocol.SlotNameSize]
	}

	start := time.Now()
	c.reportProgress(Progress{Phase: PhaseHandshake, TotalBanks: totalBanks})

	frame, err := protocol.BuildROMUploadRequestCmd(uint16(totalBanks), name)
	if err != nil {
		return err
	}
	if err := c.executeStatus(ctx, romUploadSpec.operation, frame); err != nil {
		return fmt.Errorf("rom upload handshake: %w", err)
	}

	c.logInfo("rom upload accepted", "name", name, "banks", totalBanks, "bytes", len(rom))

	if _, err := c.streamOut(ctx, romUploadSpec, totalBanks, rom, start); err != nil {
		return err
	}
	return nil
}

// DownloadSave reads a slot's save RAM into dst and returns the number of
// bytes written. A slot with no RAM banks has no save data: the call is a
// no-op returning (0, nil) and issues zero chunk commands; callers surface
// that as an advisory, not an error.
//
// The slot must come from a current listing snapshot (its stored RAM bank
// count determines the transfer length).
func (c *Cartridge) DownloadSave(ctx context.Context, slot *protocol.Slot, dst io.Writer) (int, error) {
	if slot == nil {
		return 0, fmt.Errorf("slot cannot be nil")
	}
	if slot.NumRAMBanks == 0 {
		c.logInfo("slot has no save ram, nothing to download", "slot", slot.ID, "name", slot.Name)
		return 0, nil
	}

	totalBanks := int(slot.NumRAMBanks)
	start := time.Now()
	c.reportProgress(Progress{Phase: PhaseHandshake, TotalBanks: totalBanks})

	frame := protocol.BuildSaveDownloadRequestCmd(slot.ID)
	if err := c.executeStatus(ctx, saveDownloadSpec.operation, frame); err != nil {
		return 0, fmt.Errorf("save download handshake: %w", err)
	}

	return c.streamIn(ctx, saveDownloadSpec, totalBanks, dst, start)
}

// UploadSave writes save RAM back into a slot and returns the number of
// payload bytes sent (including zero padding). A slot with no RAM banks is a
// no-op returning (0, nil); data larger than the slot's save RAM is rejected.
func (c *Cartridge) UploadSave(ctx context.Context, slot *protocol.Slot, data []byte) (int, error) {
	if slot == nil {
		return 0, fmt.Errorf("slot cannot be nil")
	}
	if slot.NumRAMBanks == 0 {
		c.logInfo("slot has no save ram, nothing to upload", "slot", slot.ID, "name", slot.Name)
		return 0, nil
	}

	totalBanks := int(slot.NumRAMBanks)
	if len(data) > totalBanks*protocol.SaveBankSize {
		return 0, fmt.Errorf("save data is %d bytes, slot holds %d", len(data), totalBanks*protocol.SaveBankSize)
	}

	start := time.Now()
	c.reportProgress(Progress{Phase: PhaseHandshake, TotalBanks: totalBanks})

	frame := protocol.BuildSaveUploadRequestCmd(slot.ID)
	if err := c.executeStatus(ctx, saveUploadSpec.operation, frame); err != nil {
		return 0, fmt.Errorf("save upload handshake: %w", err)
	}

	return c.streamOut(ctx, saveUploadSpec, totalBanks, data, start)
}

// streamOut drives an outbound transfer: for every (bank, chunk) position in
// strictly increasing order it sends one 32-byte chunk and expects an
// accepted status. Sources shorter than totalBanks*bankSize are zero-padded.
// The first failed chunk aborts the whole transfer.
func (c *Cartridge) streamOut(ctx context.Context, spec transferSpec, totalBanks int, src []byte, start time.Time) (int, error) {
	sent := 0
	chunk := make([]byte, protocol.ChunkSize)

	for bank := 0; bank < totalBanks; bank++ {
		for idx := 0; idx < spec.chunksPerBank; idx++ {
			if err := ctx.Err(); err != nil {
				return sent, fmt.Errorf("%s cancelled: %w", spec.operation, err)
			}

			offset := bank*spec.bankSize + idx*protocol.ChunkSize
			n := 0
			if offset < len(src) {
				n = copy(chunk, src[offset:])
			}
			for i := n; i < protocol.ChunkSize; i++ {
				chunk[i] = 0
			}

			frame, err := protocol.BuildChunkCmd(spec.chunkCmd, uint16(bank), uint16(idx), chunk)
			if err != nil {
				return sent, err
			}
			if err := c.executeStatus(ctx, spec.operation, frame); err != nil {
				return sent, fmt.Errorf("%s bank %d chunk %d: %w", spec.operation, bank, idx, err)
			}
			sent += protocol.ChunkSize
		}

		c.reportBank(spec, bank+1, totalBanks, sent, start)
	}

	c.reportProgress(Progress{
		Phase:       PhaseComplete,
		CurrentBank: totalBanks,
		TotalBanks:  totalBanks,
		Bytes:       sent,
		Percentage:  100,
		Elapsed:     time.Since(start),
	})
	return sent, nil
}

// streamIn drives an inbound transfer: for every (bank, chunk) position it
// requests one chunk, verifies that the device's cursor matches the host's
// expectation, and appends the 32 data bytes to dst in order. An index
// mismatch aborts with DesyncError before anything further is written.
func (c *Cartridge) streamIn(ctx context.Context, spec transferSpec, totalBanks int, dst io.Writer, start time.Time) (int, error) {
	received := 0
	request := []byte{spec.chunkCmd}

	for bank := 0; bank < totalBanks; bank++ {
		for idx := 0; idx < spec.chunksPerBank; idx++ {
			if err := ctx.Err(); err != nil {
				return received, fmt.Errorf("%s cancelled: %w", spec.operation, err)
			}

			data, err := c.execute(ctx, spec.operation, request, protocol.ChunkFrameSize)
			if err != nil {
				return received, fmt.Errorf("%s bank %d chunk %d: %w", spec.operation, bank, idx, err)
			}

			gotBank, gotChunk, payload, err := protocol.ParseChunkReply(data)
			if err != nil {
				return received, fmt.Errorf("%s bank %d chunk %d: %w", spec.operation, bank, idx, err)
			}
			if gotBank != uint16(bank) || gotChunk != uint16(idx) {
				return received, &DesyncError{
					WantBank:  uint16(bank),
					WantChunk: uint16(idx),
					GotBank:   gotBank,
					GotChunk:  gotChunk,
				}
			}

			if _, err := dst.Write(payload); err != nil {
				return received, fmt.Errorf("%s: write destination: %w", spec.operation, err)
			}
			received += protocol.ChunkSize
		}

		c.reportBank(spec, bank+1, totalBanks, received, start)
	}

	c.reportProgress(Progress{
		Phase:       PhaseComplete,
		CurrentBank: totalBanks,
		TotalBanks:  totalBanks,
		Bytes:       received,
		Percentage:  100,
		Elapsed:     time.Since(start),
	})
	return received, nil
}

// reportBank reports per-bank progress during the streaming loop.
func (c *Cartridge) reportBank(spec transferSpec, banksDone, totalBanks, bytes int, start time.Time) {
	c.reportProgress(Progress{
		Phase:       PhaseTransfer,
		CurrentBank: banksDone,
		TotalBanks:  totalBanks,
		Bytes:       bytes,
		Percentage:  float64(banksDone) / float64(totalBanks) * 100,
		Elapsed:     time.Since(start),
	})
}
