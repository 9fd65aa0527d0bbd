package partition

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
)

// DefaultManifestName is the manifest the ESP-IDF build writes into its
// build directory.
const DefaultManifestName = "flasher_args.json"

// FlashFilesField holds the offset to artifact mapping inside the manifest.
const FlashFilesField = "flash_files"

// Manifest reads the partition table from a build manifest. An empty Path
// means DefaultManifestName inside the build directory.
type Manifest struct {
	Path string
}

// manifestTarget is one of the per-target objects ("bootloader", "app", ...)
// that sit next to flash_files. Only used to name partitions.
type manifestTarget struct {
	Offset string `json:"offset"`
	File   string `json:"file"`
}

// Kind reports KindManifest.
func (m *Manifest) Kind() Kind { return KindManifest }

// Describe names the manifest path for the layout header.
func (m *Manifest) Describe() string { return "manifest " + m.Path }

// Resolve reads and parses the manifest.
func (m *Manifest) Resolve(buildDir string) (Table, error) {
	p := m.Path
	if p == "" {
		p = filepath.Join(buildDir, DefaultManifestName)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ManifestNotFoundError{Path: p}
		}
		return nil, &ManifestMalformedError{Path: p, Reason: "cannot read file", Err: err}
	}

	return parseManifest(p, data)
}

func parseManifest(name string, data []byte) (Table, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: "invalid JSON", Err: err}
	}

	raw, ok := doc[FlashFilesField]
	if !ok {
		return nil, &ManifestMalformedError{Path: name, Reason: `missing "` + FlashFilesField + `" field`}
	}

	var files map[string]string
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: `"` + FlashFilesField + `" is not an offset to path mapping`, Err: err}
	}
	if len(files) == 0 {
		return nil, &ManifestMalformedError{Path: name, Reason: `"` + FlashFilesField + `" is empty`}
	}

	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := targetNames(doc)
	table := make(Table, 0, len(files))
	var errs error
	for _, key := range keys {
		off, err := ParseOffset(key)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		file := files[key]
		table = append(table, Entry{Offset: off, Path: file, Name: names[targetKey{off, file}]})
	}
	if errs != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: "bad offset in " + FlashFilesField, Err: errs}
	}

	if err := table.Validate(); err != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: "invalid partition table", Err: err}
	}
	table.Sort()
	return table, nil
}

type targetKey struct {
	offset uint64
	file   string
}

// targetNames indexes the per-target objects by placement so flash_files
// entries can borrow their names. Anything that does not look like a target
// is ignored.
func targetNames(doc map[string]json.RawMessage) map[targetKey]string {
	names := make(map[targetKey]string)
	for name, raw := range doc {
		if name == FlashFilesField {
			continue
		}
		var t manifestTarget
		if err := json.Unmarshal(raw, &t); err != nil || t.File == "" || t.Offset == "" {
			continue
		}
		off, err := ParseOffset(t.Offset)
		if err != nil {
			continue
		}
		names[targetKey{off, t.File}] = name
	}
	return names
}
