// Command croco manages a Croco Cartridge over USB: list stored games, flash
// new ROMs, back up and restore save RAM, delete slots and query device
// information.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/crocotools/go-croco/cartridge"
	"github.com/crocotools/go-croco/gb"
	"github.com/crocotools/go-croco/protocol"
	"github.com/crocotools/go-croco/usbdev"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: croco <command> [arguments]

Commands:
  list                       List all games on the cartridge
  info                       Show device information
  flash [-name NAME] FILE    Flash a ROM image to a new slot
  backup SLOT FILE           Save a slot's save RAM to FILE
  restore SLOT FILE          Write FILE back into a slot's save RAM
  delete SLOT                Delete a slot and its save data
  help                       Show this help message

SLOT is the index shown by 'croco list'. Slot indices may change after a
flash or delete; run 'croco list' again before reusing one.
`)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("croco: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "list":
		err = runList(ctx, args)
	case "info":
		err = runInfo(ctx, args)
	case "flash":
		err = runFlash(ctx, args)
	case "backup":
		err = runBackup(ctx, args)
	case "restore":
		err = runRestore(ctx, args)
	case "delete":
		err = runDelete(ctx, args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		usage()
		log.Fatalf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatal(err)
	}
}

// open finds the cartridge and builds a client around it. Callers must close
// the returned device on every exit path.
func open(opts ...cartridge.Option) (*cartridge.Cartridge, *usbdev.Device, error) {
	dev, err := usbdev.Open()
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("Croco Cartridge found: %s\n\n", dev)
	return cartridge.New(dev, opts...), dev, nil
}

// progressPrinter renders transfer progress on one terminal line.
func progressPrinter(p cartridge.Progress) {
	switch p.Phase {
	case cartridge.PhaseHandshake:
		fmt.Printf("Starting transfer of %d bank(s)...\n", p.TotalBanks)
	case cartridge.PhaseTransfer:
		fmt.Printf("\r  bank %d/%d (%.1f%%, %d KiB)", p.CurrentBank, p.TotalBanks, p.Percentage, p.Bytes/1024)
	case cartridge.PhaseComplete:
		fmt.Printf("\r  bank %d/%d (100.0%%, %d KiB) in %s\n", p.TotalBanks, p.TotalBanks, p.Bytes/1024, p.Elapsed.Round(10*time.Millisecond))
	}
}

func runList(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("list takes no arguments")
	}

	cart, dev, err := open()
	if err != nil {
		return err
	}
	defer dev.Close()

	util, slots, err := cart.ListSlots(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d game(s) using %d / %d banks\n\n", util.NumROMs, util.UsedBanks, util.MaxBanks)
	if len(slots) == 0 {
		fmt.Println("No ROMs found on cartridge")
		return nil
	}

	for _, slot := range slots {
		fmt.Printf("[%2d] %-17s | ROM: %4d x 32KB | RAM: %d x 8KB | %s\n",
			slot.ID, slot.Name, slot.NumROMBanks, slot.NumRAMBanks,
			gb.CartridgeTypeName(slot.MBC))
	}
	return nil
}

func runInfo(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("info takes no arguments")
	}

	cart, dev, err := open()
	if err != nil {
		return err
	}
	defer dev.Close()

	id, err := cart.Identity(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Device Information:")
	fmt.Printf("  Feature Step: %d\n", id.FeatureStep)
	fmt.Printf("  HW Version:   %d\n", id.HWVersion)
	fmt.Printf("  SW Version:   %d.%d.%d%c\n", id.SWMajor, id.SWMinor, id.SWPatch, id.BuildTag)
	fmt.Printf("  Git Short:    0x%08x\n", id.GitShortHash)
	fmt.Printf("  Git Dirty:    %v\n", id.GitDirty)
	if id.Serial != nil {
		fmt.Printf("  Serial ID:    %X\n", id.Serial)
	}
	return nil
}

func runFlash(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("flash", flag.ExitOnError)
	name := fs.String("name", "", "slot name (default: ROM header title or file name)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("flash needs exactly one ROM file")
	}
	path := fs.Arg(0)

	rom, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	slotName := *name
	if header, err := gb.ParseHeader(rom); err == nil {
		if !header.ChecksumOK {
			log.Print("warning: ROM header checksum mismatch; flashing anyway")
		}
		fmt.Printf("ROM: %q, %s, %d KiB declared\n", header.Title,
			gb.CartridgeTypeName(header.CartridgeType), header.ROMSize/1024)
		if slotName == "" {
			slotName = header.Title
		}
	} else {
		log.Printf("warning: %v", err)
	}
	if slotName == "" {
		slotName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(slotName) > protocol.SlotNameSize {
		slotName = slotName[:protocol.SlotNameSize]
	}

	cart, dev, err := open(cartridge.WithProgressCallback(progressPrinter))
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := cart.UploadROM(ctx, slotName, rom); err != nil {
		return err
	}
	fmt.Printf("Flashed %q (%d bytes)\n", slotName, len(rom))
	return nil
}

func runBackup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("backup needs a slot index and an output file")
	}
	id, err := parseSlotID(args[0])
	if err != nil {
		return err
	}

	cart, dev, err := open(cartridge.WithProgressCallback(progressPrinter))
	if err != nil {
		return err
	}
	defer dev.Close()

	slot, err := cart.SlotInfo(ctx, id)
	if err != nil {
		return err
	}

	var save bytes.Buffer
	n, err := cart.DownloadSave(ctx, slot, &save)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Printf("Slot %d (%q) has no save RAM; nothing to back up\n", slot.ID, slot.Name)
		return nil
	}

	if err := os.WriteFile(args[1], save.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("Saved %d bytes from %q to %s\n", n, slot.Name, args[1])
	return nil
}

func runRestore(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("restore needs a slot index and an input file")
	}
	id, err := parseSlotID(args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	cart, dev, err := open(cartridge.WithProgressCallback(progressPrinter))
	if err != nil {
		return err
	}
	defer dev.Close()

	slot, err := cart.SlotInfo(ctx, id)
	if err != nil {
		return err
	}

	n, err := cart.UploadSave(ctx, slot, data)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Printf("Slot %d (%q) has no save RAM; nothing restored\n", slot.ID, slot.Name)
		return nil
	}
	fmt.Printf("Restored %d bytes into %q\n", len(data), slot.Name)
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete needs a slot index")
	}
	id, err := parseSlotID(args[0])
	if err != nil {
		return err
	}

	cart, dev, err := open()
	if err != nil {
		return err
	}
	defer dev.Close()

	// Confirm the slot exists and show what is about to go away.
	slot, err := cart.SlotInfo(ctx, id)
	if err != nil {
		return err
	}
	if err := cart.DeleteSlot(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted slot %d (%q). Remaining slot indices may have changed.\n", slot.ID, slot.Name)
	return nil
}

func parseSlotID(s string) (byte, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid slot index %q", s)
	}
	return byte(n), nil
}
