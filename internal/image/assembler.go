package image

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bigbag/fwmerge/internal/flash"
	"github.com/bigbag/fwmerge/internal/logging"
	"github.com/bigbag/fwmerge/internal/partition"
)

// ProgressCallback is called after each partition has been processed.
type ProgressCallback func(current, total int)

// Assembler merges build artifacts into a flash image.
type Assembler struct {
	log      *zap.SugaredLogger
	progress ProgressCallback
}

// New creates an Assembler. A nil logger discards log output.
func New(log *zap.SugaredLogger) *Assembler {
	if log == nil {
		log = logging.Nop()
	}
	return &Assembler{log: log}
}

// SetProgressCallback sets the progress callback function.
func (a *Assembler) SetProgressCallback(cb ProgressCallback) {
	a.progress = cb
}

// reportProgress calls the progress callback if set.
func (a *Assembler) reportProgress(current, total int) {
	if a.progress != nil {
		a.progress(current, total)
	}
}

// CheckBuildDir verifies that dir exists and is a directory.
func CheckBuildDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &BuildDirMissingError{Dir: dir}
		}
		return &IOError{Op: "stat", Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return &BuildDirMissingError{Dir: dir}
	}
	return nil
}

type artifact struct {
	placement Placement
	data      []byte
}

// Assemble builds an image of capacity bytes from the artifacts in table,
// resolved against buildDir. Missing artifacts are skipped and listed in the
// report. Every range is checked before the first byte is copied, so an
// error never yields a partially merged image.
func (a *Assembler) Assemble(table partition.Table, buildDir string, capacity uint64) (*Image, *Report, error) {
	if err := CheckBuildDir(buildDir); err != nil {
		return nil, nil, err
	}
	if capacity > flash.MaxBufferSize {
		return nil, nil, fmt.Errorf("flash size 0x%X exceeds the 0x%X bytes this platform can address",
			capacity, uint64(flash.MaxBufferSize))
	}
	if err := table.Validate(); err != nil {
		return nil, nil, err
	}

	entries := table.Sorted()
	report := &Report{Capacity: capacity}

	loaded, err := a.load(entries, buildDir, capacity, report)
	if err != nil {
		return nil, nil, err
	}
	if err := checkOverlap(loaded); err != nil {
		return nil, nil, err
	}

	img := NewImage(capacity)
	for _, art := range loaded {
		img.place(art.placement.Entry.Offset, art.data)
		report.Merged = append(report.Merged, art.placement)
		a.log.Debugw("merged partition",
			"name", art.placement.Entry.DisplayName(),
			"offset", fmt.Sprintf("0x%08X", art.placement.Entry.Offset),
			"size", art.placement.Size,
		)
	}

	return img, report, nil
}

// load reads every present artifact in ascending offset order and checks it
// against the capacity.
func (a *Assembler) load(entries partition.Table, buildDir string, capacity uint64, report *Report) ([]artifact, error) {
	loaded := make([]artifact, 0, len(entries))

	for i, e := range entries {
		p := Placement{Entry: e, Path: filepath.Join(buildDir, filepath.FromSlash(e.Path))}

		data, err := os.ReadFile(p.Path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, &IOError{Op: "read", Path: p.Path, Err: err}
			}
			a.log.Warnw("artifact not found, skipping",
				"offset", fmt.Sprintf("0x%08X", e.Offset),
				"path", p.Path,
			)
			report.Skipped = append(report.Skipped, p)
			a.reportProgress(i+1, len(entries))
			continue
		}

		p.Size = len(data)
		if e.Offset > capacity || uint64(len(data)) > capacity-e.Offset {
			return nil, &OutOfRangeError{Entry: e, Size: len(data), Capacity: capacity}
		}
		if !flash.IsSectorAligned(e.Offset) {
			a.log.Warnw("partition offset is not sector aligned",
				"offset", fmt.Sprintf("0x%08X", e.Offset),
				"path", e.Path,
				"sector", flash.SectorSize,
			)
		}

		loaded = append(loaded, artifact{placement: p, data: data})
		a.reportProgress(i+1, len(entries))
	}

	return loaded, nil
}

// checkOverlap expects artifacts sorted by offset. Empty artifacts occupy no
// bytes and cannot overlap anything.
func checkOverlap(loaded []artifact) error {
	var last *Placement
	for i := range loaded {
		cur := &loaded[i].placement
		if cur.Size == 0 {
			continue
		}
		if last != nil && last.End() > cur.Entry.Offset {
			return &OverlapError{First: *last, Second: *cur}
		}
		if last == nil || cur.End() > last.End() {
			last = cur
		}
	}
	return nil
}
