// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants: channel kinds,
// open modes and memory-mapping policies.

package api

import "fmt"

// Kind discriminates the resource behind a channel. It is assigned once,
// when the channel is created.
type Kind int

const (
	KindUndefined Kind = iota
	KindDisc
	KindConnection
	KindMemory
	KindDock
	KindAsynchronous
	KindMemoryMapped
	KindCharacterSpecial
	KindFIFO
)

func (k Kind) String() string {
	switch k {
	case KindDisc:
		return "disc"
	case KindConnection:
		return "connection"
	case KindMemory:
		return "memory"
	case KindDock:
		return "dock"
	case KindAsynchronous:
		return "asynchronous"
	case KindMemoryMapped:
		return "mmap"
	case KindCharacterSpecial:
		return "character-special"
	case KindFIFO:
		return "fifo"
	default:
		return "undefined"
	}
}

// Buffered reports whether channels of this kind carry read/write buffers
// over a descriptor.
func (k Kind) Buffered() bool {
	switch k {
	case KindDisc, KindConnection, KindCharacterSpecial, KindFIFO:
		return true
	}
	return false
}

// Stream reports whether the kind is a non-seekable byte stream.
func (k Kind) Stream() bool {
	switch k {
	case KindConnection, KindCharacterSpecial, KindFIFO:
		return true
	}
	return false
}

// OpenMode selects how OpenFile opens a path.
type OpenMode int

const (
	ModeRead        OpenMode = iota // "r"
	ModeWrite                       // "w"
	ModeAppend                      // "a"
	ModeReadUpdate                  // "r+"
	ModeWriteUpdate                 // "w+"
	ModeAppendUpdate                // "a+"
)

var modeNames = [...]string{"r", "w", "a", "r+", "w+", "a+"}

func (m OpenMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("OpenMode(%d)", int(m))
	}
	return modeNames[m]
}

// Readable reports whether the mode permits reads.
func (m OpenMode) Readable() bool {
	return m == ModeRead || m >= ModeReadUpdate
}

// Writeable reports whether the mode permits writes.
func (m OpenMode) Writeable() bool {
	return m != ModeRead
}

// ParseOpenMode converts an fopen-style mode string.
func ParseOpenMode(s string) (OpenMode, error) {
	for i, name := range modeNames {
		if s == name {
			return OpenMode(i), nil
		}
	}
	return 0, fmt.Errorf("open mode %q: %w", s, ErrInvalidArgument)
}

// MapOption is the policy MapDisc uses to decide between a memory mapping
// and a buffered disc channel.
type MapOption int

const (
	MapNever MapOption = iota
	MapLargeAndLocal
	MapLocal
	MapLarge
	MapIfAvailable
	MapAlways
)

func (o MapOption) String() string {
	switch o {
	case MapNever:
		return "never"
	case MapLargeAndLocal:
		return "large-and-local"
	case MapLocal:
		return "local"
	case MapLarge:
		return "large"
	case MapIfAvailable:
		return "if-available"
	case MapAlways:
		return "always"
	default:
		return fmt.Sprintf("MapOption(%d)", int(o))
	}
}

// ParseMapOption converts a policy name as printed by MapOption.String.
func ParseMapOption(s string) (MapOption, error) {
	for o := MapNever; o <= MapAlways; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return MapNever, fmt.Errorf("map option %q: %w", s, ErrInvalidArgument)
}
