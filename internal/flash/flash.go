package flash

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Flash geometry
const (
	ErasedByte  = 0xFF             // value read back from unprogrammed flash
	SectorSize  = 0x1000           // 4KB erase sectors
	DefaultSize = 16 * 1024 * 1024 // 16MB
)

// MaxSize is the largest capacity an image may declare. Flash addresses are
// 32-bit on every supported target.
const MaxSize = 1 << 32

// MaxBufferSize is the largest image this host can hold in one buffer. It
// is below MaxSize on 32-bit platforms.
const MaxBufferSize = min(MaxSize, math.MaxInt)

var sizeSuffixes = []struct {
	suffix string
	scale  uint64
}{
	{"KIB", 1 << 10},
	{"MIB", 1 << 20},
	{"GIB", 1 << 30},
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
}

// ParseSize parses a flash capacity. Plain numbers are bytes and may use a
// 0x prefix; K, M and G suffixes (optionally KB/KiB etc.) are binary units.
func ParseSize(s string) (uint64, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	if str == "" {
		return 0, fmt.Errorf("empty flash size")
	}

	scale := uint64(1)
	if !strings.HasPrefix(str, "0X") {
		for _, u := range sizeSuffixes {
			if strings.HasSuffix(str, u.suffix) {
				str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
				scale = u.scale
				break
			}
		}
	}

	n, err := strconv.ParseUint(str, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flash size %q", s)
	}
	if n == 0 {
		return 0, fmt.Errorf("flash size must be greater than zero")
	}
	if n > MaxSize/scale {
		return 0, fmt.Errorf("flash size %q exceeds the 4GB address space", s)
	}
	if n*scale > MaxBufferSize {
		return 0, fmt.Errorf("flash size %q exceeds the %d bytes this platform can address", s, uint64(MaxBufferSize))
	}

	return n * scale, nil
}

// FormatSize renders a byte count using the largest exact binary unit.
func FormatSize(n uint64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// IsSectorAligned reports whether offset starts an erase sector.
func IsSectorAligned(offset uint64) bool {
	return offset%SectorSize == 0
}

// SectorCount returns the number of erase sectors needed to hold size bytes.
func SectorCount(size int) int {
	return (size + SectorSize - 1) / SectorSize
}
