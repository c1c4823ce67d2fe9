package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Snapshot archive entries.
const (
	stateEntry = "cpu_state.json"
	romEntry   = "rom.bin"
	ramEntry   = "ram.bin"

	snapshotFormat = "hack-snapshot/1"
)

// snapshotState is the human readable part of a snapshot. ROM and RAM are
// stored beside it as little-endian words.
type snapshotState struct {
	Format     string `json:"format"`
	A          uint16 `json:"a"`
	D          uint16 `json:"d"`
	PC         uint16 `json:"pc"`
	Halted     bool   `json:"halted"`
	Cycles     uint64 `json:"cycles"`
	ProgramLen int    `json:"program_len"`
}

// Hibernate writes the machine as a zip archive to w.
func (c *CPU) Hibernate(w io.Writer) error {
	zw := zip.NewWriter(w)

	state, err := json.MarshalIndent(snapshotState{
		Format:     snapshotFormat,
		A:          c.A,
		D:          c.D,
		PC:         c.PC,
		Halted:     c.Halted,
		Cycles:     c.Cycles,
		ProgramLen: c.ProgramLen,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", stateEntry, err)
	}

	entries := []struct {
		name string
		data any
	}{
		{stateEntry, state},
		{romEntry, c.ROM[:c.ProgramLen]},
		{ramEntry, c.RAM[:]},
	}
	for _, e := range entries {
		ew, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if raw, ok := e.data.([]byte); ok {
			_, err = ew.Write(raw)
		} else {
			err = binary.Write(ew, binary.LittleEndian, e.data)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// Restore replaces the machine state with the archive in r. The CPU is left
// untouched when the archive is invalid.
func (c *CPU) Restore(r io.ReaderAt, size int64) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	raw, err := readEntry(zr, stateEntry)
	if err != nil {
		return err
	}
	var state snapshotState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("unmarshal %s: %w", stateEntry, err)
	}
	if state.Format != snapshotFormat {
		return fmt.Errorf("unsupported snapshot format %q", state.Format)
	}
	if state.ProgramLen < 0 || state.ProgramLen > ROMSize {
		return fmt.Errorf("snapshot program length %d out of range", state.ProgramLen)
	}

	rom := make([]uint16, state.ProgramLen)
	if err := readWords(zr, romEntry, rom); err != nil {
		return err
	}
	ram := make([]uint16, RAMSize)
	if err := readWords(zr, ramEntry, ram); err != nil {
		return err
	}

	c.ROM = [ROMSize]uint16{}
	copy(c.ROM[:], rom)
	copy(c.RAM[:], ram)
	c.A = state.A
	c.D = state.D
	c.PC = state.PC
	c.Halted = state.Halted
	c.Cycles = state.Cycles
	c.ProgramLen = state.ProgramLen
	return nil
}

func (c *CPU) HibernateToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Hibernate(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *CPU) RestoreFromBytes(data []byte) error {
	return c.Restore(bytes.NewReader(data), int64(len(data)))
}

// HibernateToFile replaces path with a snapshot. The archive is written to a
// temporary file first so a crash never leaves a half written snapshot.
func (c *CPU) HibernateToFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := c.Hibernate(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *CPU) RestoreFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return c.Restore(f, info.Size())
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	rc, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// readWords fills dst from the named entry, which must hold exactly
// len(dst) words.
func readWords(zr *zip.Reader, name string, dst []uint16) error {
	raw, err := readEntry(zr, name)
	if err != nil {
		return err
	}
	if len(raw) != len(dst)*2 {
		return fmt.Errorf("%s holds %d bytes, want %d", name, len(raw), len(dst)*2)
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
