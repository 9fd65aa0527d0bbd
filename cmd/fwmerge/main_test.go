package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testLayout = `
partitions:
  - name: a
    offset: 0x0
    path: a.bin
  - name: b
    offset: 0x100
    path: b.bin
`

func setupBuild(t *testing.T, files map[string]string) (buildDir, layout string) {
	t.Helper()
	root := t.TempDir()
	buildDir = filepath.Join(root, "build")
	require.NoError(t, os.Mkdir(buildDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(buildDir, name), []byte(content), 0o644))
	}
	layout = filepath.Join(root, "layout.yaml")
	require.NoError(t, os.WriteFile(layout, []byte(testLayout), 0o644))
	return buildDir, layout
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMerge_BothPresent(t *testing.T) {
	buildDir, layout := setupBuild(t, map[string]string{"a.bin": "AAAA", "b.bin": "BB"})
	output := filepath.Join(t.TempDir(), "merged.bin")

	stdout, err := execute(t, "merge", "-q", "--build-dir", buildDir, "--layout", layout,
		"--flash-size", "1024", "--output", output)
	require.NoError(t, err)
	require.Contains(t, stdout, "2 found, 2 merged, 0 skipped")
	require.Contains(t, stdout, "Merged  0x00000000  a.bin (4 bytes, 1 sectors)")
	require.Contains(t, stdout, "Data:       6 bytes in 2 sectors")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, data, 1024)
	require.Equal(t, []byte("AAAA"), data[0:4])
	require.Equal(t, []byte("BB"), data[256:258])
	for i, b := range data {
		if (i < 4) || (i >= 256 && i < 258) {
			continue
		}
		if b != 0xFF {
			t.Fatalf("data[%d] = 0x%02X, want 0xFF", i, b)
		}
	}
}

func TestMerge_MissingArtifactIsSkipped(t *testing.T) {
	buildDir, layout := setupBuild(t, map[string]string{"a.bin": "AAAA"})
	output := filepath.Join(t.TempDir(), "merged.bin")

	stdout, err := execute(t, "-q", "-d", buildDir, "--layout", layout, "-s", "1KB", "-o", output)
	require.NoError(t, err)
	require.Contains(t, stdout, "2 found, 1 merged, 1 skipped")
	require.Contains(t, stdout, "Skipped 0x00000100  b.bin (not found)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, data, 1024)
	require.Equal(t, []byte{0xFF, 0xFF}, data[256:258])
}

func TestMerge_OutOfRangeWritesNothing(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	require.NoError(t, os.Mkdir(buildDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "big.bin"), make([]byte, 10), 0o644))
	layout := filepath.Join(root, "layout.yaml")
	require.NoError(t, os.WriteFile(layout, []byte("partitions:\n  - offset: 1020\n    path: big.bin\n"), 0o644))
	output := filepath.Join(root, "merged.bin")

	_, err := execute(t, "merge", "-q", "-d", buildDir, "--layout", layout, "-s", "1024", "-o", output)
	require.Error(t, err)
	require.Contains(t, err.Error(), "0x3FC")

	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestMerge_ManifestDrivenWithHex(t *testing.T) {
	buildDir, _ := setupBuild(t, map[string]string{
		"a.bin":             "AAAA",
		"flasher_args.json": `{"flash_files": {"0x0": "a.bin", "0x200": "c.bin"}}`,
	})
	outDir := t.TempDir()
	output := filepath.Join(outDir, "merged.bin")
	hexOut := filepath.Join(outDir, "merged.hex")

	stdout, err := execute(t, "merge", "-q", "-d", buildDir, "-s", "0x1000", "-o", output, "--hex", hexOut)
	require.NoError(t, err)
	require.Contains(t, stdout, "Layout: manifest")
	require.Contains(t, stdout, "2 found, 1 merged, 1 skipped")

	_, err = os.Stat(hexOut)
	require.NoError(t, err)
}

func TestMerge_HexSameAsOutputWritesNothing(t *testing.T) {
	buildDir, layout := setupBuild(t, map[string]string{"a.bin": "AAAA", "b.bin": "BB"})
	outDir := t.TempDir()
	output := filepath.Join(outDir, "merged.bin")
	hexOut := outDir + string(filepath.Separator) + "sub" + string(filepath.Separator) + ".." +
		string(filepath.Separator) + "merged.bin"

	_, err := execute(t, "merge", "-q", "-d", buildDir, "--layout", layout, "-s", "1024",
		"-o", output, "--hex", hexOut)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--hex and --output must be different files")

	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestMerge_MissingBuildDir(t *testing.T) {
	output := filepath.Join(t.TempDir(), "merged.bin")

	_, err := execute(t, "merge", "-q", "-d", filepath.Join(t.TempDir(), "nope"), "-o", output)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestMerge_MissingExplicitManifest(t *testing.T) {
	buildDir, _ := setupBuild(t, nil)

	_, err := execute(t, "merge", "-q", "-d", buildDir, "--manifest", filepath.Join(buildDir, "flasher_args.json"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "run the firmware build first")
}

func TestMerge_InvalidFlashSize(t *testing.T) {
	buildDir, _ := setupBuild(t, nil)

	_, err := execute(t, "merge", "-q", "-d", buildDir, "-s", "lots")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--flash-size")
}

func TestMerge_SourceFlagsAreExclusive(t *testing.T) {
	buildDir, layout := setupBuild(t, nil)

	_, err := execute(t, "merge", "-q", "-d", buildDir, "--layout", layout, "--builtin")
	require.Error(t, err)
}

func TestLayout_ShowsPlacement(t *testing.T) {
	buildDir, layout := setupBuild(t, map[string]string{"a.bin": "AAAA"})

	stdout, err := execute(t, "layout", "-d", buildDir, "--layout", layout)
	require.NoError(t, err)
	require.Contains(t, stdout, "0x00000000  0x00000004  a")
	require.Contains(t, stdout, "0x00000100  missing     b")
}

func TestLayout_Builtin(t *testing.T) {
	stdout, err := execute(t, "layout", "--builtin", "-d", t.TempDir())
	require.NoError(t, err)
	require.Contains(t, stdout, "built-in table (9 partitions)")
	require.Contains(t, stdout, "brookesia_speaker.bin")
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "fwmerge dev")
}
