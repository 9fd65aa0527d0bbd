package image

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/marcinbor85/gohex"

	"github.com/bigbag/fwmerge/internal/flash"
)

// hexLineLength is the number of data bytes per Intel HEX record.
const hexLineLength = 16

// Image is the full contents of flash. Bytes not covered by a merged
// artifact hold flash.ErasedByte.
type Image struct {
	Capacity uint64
	Data     []byte
}

// NewImage returns an erased image of the given capacity.
func NewImage(capacity uint64) *Image {
	return &Image{
		Capacity: capacity,
		Data:     bytes.Repeat([]byte{flash.ErasedByte}, int(capacity)),
	}
}

func (img *Image) place(offset uint64, data []byte) {
	copy(img.Data[offset:], data)
}

// IsErased reports whether every byte in [start, end) is still erased.
func (img *Image) IsErased(start, end uint64) bool {
	for _, b := range img.Data[start:end] {
		if b != flash.ErasedByte {
			return false
		}
	}
	return true
}

// WriteFile writes the whole image to path. The file only appears once it
// is complete.
func (img *Image) WriteFile(path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(img.Data)
		return err
	})
}

// WriteHex writes the merged partitions as Intel HEX. Erased gaps are not
// emitted.
func (img *Image) WriteHex(w io.Writer, merged []Placement) error {
	mem := gohex.NewMemory()
	for _, p := range merged {
		if p.Size == 0 {
			continue
		}
		if err := mem.AddBinary(uint32(p.Entry.Offset), img.Data[p.Entry.Offset:p.End()]); err != nil {
			return fmt.Errorf("failed to add %s to hex image: %w", p.Entry.Path, err)
		}
	}
	return mem.DumpIntelHex(w, hexLineLength)
}

// WriteHexFile writes the Intel HEX rendition of the image to path.
func (img *Image) WriteHexFile(path string, merged []Placement) error {
	return writeAtomic(path, func(w io.Writer) error {
		return img.WriteHex(w, merged)
	})
}

// writeAtomic writes to a temporary file next to path and renames it into
// place, so a failed write never leaves a partial file behind.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = write(f); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err = f.Chmod(0o644); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err = f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err = f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err = os.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
