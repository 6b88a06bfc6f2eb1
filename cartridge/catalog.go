package cartridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crocotools/go-croco/protocol"
)

// Utilization queries the number of slots in use and the flash bank usage.
func (c *Cartridge) Utilization(ctx context.Context) (*protocol.Utilization, error) {
	data, err := c.execute(ctx, "utilization", protocol.BuildUtilizationCmd(), 10)
	if err != nil {
		return nil, err
	}
	return protocol.ParseUtilization(data)
}

// SlotInfo queries metadata for one slot.
//
// Slot IDs are only valid within one listing snapshot; re-query after any
// upload or delete before referencing an ID again.
func (c *Cartridge) SlotInfo(ctx context.Context, id byte) (*protocol.Slot, error) {
	data, err := c.execute(ctx, "slot info", protocol.BuildSlotInfoCmd(id), 25)
	if err != nil {
		return nil, err
	}
	return protocol.ParseSlotInfo(id, data)
}

// ListSlots queries utilization and then scans every slot in order.
//
// A slot whose reply is too short is reported through the logger and skipped;
// the scan continues with the next slot. Any other failure aborts the scan.
func (c *Cartridge) ListSlots(ctx context.Context) (*protocol.Utilization, []protocol.Slot, error) {
	util, err := c.Utilization(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get utilization: %w", err)
	}

	slots := make([]protocol.Slot, 0, util.NumROMs)
	for i := 0; i < util.NumROMs; i++ {
		slot, err := c.SlotInfo(ctx, byte(i))
		if err != nil {
			var shortErr *protocol.ShortReplyError
			if errors.As(err, &shortErr) {
				c.logError("skipping slot with short metadata reply", "slot", i, "err", err)
				continue
			}
			return nil, nil, fmt.Errorf("slot %d info: %w", i, err)
		}
		slots = append(slots, *slot)

		if c.config.SlotScanDelay > 0 && i+1 < util.NumROMs {
			time.Sleep(c.config.SlotScanDelay)
		}
	}

	return util, slots, nil
}

// DeleteSlot removes a slot and its save data from the cartridge.
// A nonzero device status is surfaced verbatim as a protocol.StatusError.
//
// Deleting may compact the remaining slots and reassign their IDs; any slots
// fetched before the delete are stale afterwards.
func (c *Cartridge) DeleteSlot(ctx context.Context, id byte) error {
	return c.executeStatus(ctx, "delete slot", protocol.BuildDeleteSlotCmd(id))
}

// Identity queries firmware and hardware identification, then the device
// serial number. A device that does not report a serial degrades gracefully:
// the returned Identity has a nil Serial and no error is raised.
func (c *Cartridge) Identity(ctx context.Context) (*protocol.Identity, error) {
	data, err := c.execute(ctx, "identity", protocol.BuildIdentityCmd(), 15)
	if err != nil {
		return nil, err
	}

	id, err := protocol.ParseIdentity(data)
	if err != nil {
		return nil, err
	}

	if c.config.SerialDelay > 0 {
		time.Sleep(c.config.SerialDelay)
	}

	serialData, err := c.execute(ctx, "serial id", protocol.BuildSerialIDCmd(), 10)
	if err != nil {
		return nil, err
	}

	serial, err := protocol.ParseSerialID(serialData)
	if err != nil {
		var shortErr *protocol.ShortReplyError
		if errors.As(err, &shortErr) {
			c.logDebug("device reported no serial id", "got_bytes", shortErr.Got)
			return id, nil
		}
		return nil, err
	}

	id.Serial = serial
	return id, nil
}
