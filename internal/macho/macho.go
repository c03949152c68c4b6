// Package macho recognizes native executable images by their magic value.
//
// Classification is advisory: any read problem yields Unknown, so callers can
// classify every file in a listing without handling errors.
package macho

import (
	"encoding/binary"
	"io"
	"math/bits"
	"os"
)

// Kind is the classification result for a file.
type Kind int

const (
	// Unknown is any file that is not a recognized executable image,
	// including files that could not be read.
	Unknown Kind = iota
	// NativeExecutable is a Mach-O or universal binary.
	NativeExecutable
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case NativeExecutable:
		return "executable"
	default:
		return "unknown"
	}
}

// Known magic values, as read from the first four bytes of a file.
const (
	MagicMachO32     uint32 = 0xFEEDFACE
	MagicMachO64     uint32 = 0xFEEDFACF
	MagicFat         uint32 = 0xCAFEBABE
	MagicFatSwapped  uint32 = 0xBEBAFECA
	MagicMachOPPC    uint32 = 0xFEEDFACD
	MagicMachO32Swap uint32 = 0xCEFAEDFE
)

// PrefixLen is the number of bytes needed to classify a file.
const PrefixLen = 4

// Magic identifies the header family a prefix matched.
type Magic int

const (
	MagicNone Magic = iota
	Magic32
	Magic64
	MagicUniversal
)

// String returns a short human-readable label.
func (m Magic) String() string {
	switch m {
	case Magic32:
		return "mach-o 32-bit"
	case Magic64:
		return "mach-o 64-bit"
	case MagicUniversal:
		return "universal"
	default:
		return ""
	}
}

var knownMagics = map[uint32]Magic{
	MagicMachO32:     Magic32,
	MagicMachO64:     Magic64,
	MagicFat:         MagicUniversal,
	MagicFatSwapped:  MagicUniversal,
	MagicMachOPPC:    Magic32,
	MagicMachO32Swap: Magic32,
}

// Describe reports which header family the prefix matches.
// The value is checked in both byte orders, so the result is the same on
// little- and big-endian hosts.
func Describe(prefix []byte) Magic {
	if len(prefix) < PrefixLen {
		return MagicNone
	}
	v := binary.NativeEndian.Uint32(prefix[:PrefixLen])
	if m, ok := knownMagics[v]; ok {
		return m
	}
	if m, ok := knownMagics[bits.ReverseBytes32(v)]; ok {
		return m
	}
	return MagicNone
}

// Classify classifies a byte prefix of a file.
func Classify(prefix []byte) Kind {
	if Describe(prefix) == MagicNone {
		return Unknown
	}
	return NativeExecutable
}

// ReadPrefix reads at most PrefixLen bytes from r.
func ReadPrefix(r io.Reader) ([]byte, error) {
	buf := make([]byte, PrefixLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// DescribeFile reads the first four bytes of path and describes them.
// Large files are never loaded; only the prefix is read.
func DescribeFile(path string) Magic {
	f, err := os.Open(path)
	if err != nil {
		return MagicNone
	}
	defer f.Close()

	prefix, err := ReadPrefix(f)
	if err != nil {
		return MagicNone
	}
	return Describe(prefix)
}

// ClassifyFile classifies the file at path. Unreadable files are Unknown.
func ClassifyFile(path string) Kind {
	if DescribeFile(path) == MagicNone {
		return Unknown
	}
	return NativeExecutable
}
