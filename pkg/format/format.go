// Package format provides audio format descriptors and the negotiation
// rules a graph node uses to accept or reject a configuration.
package format

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate for descriptors the node cannot accept.
var ErrInvalid = errors.New("invalid format")

// MediaType identifies the media class of a descriptor
type MediaType int32

const (
	// MediaAudio is raw or encoded audio
	MediaAudio MediaType = 0
	// MediaVideo is reserved for video nodes
	MediaVideo MediaType = 1
)

// MediaSubtype refines the media class
type MediaSubtype int32

const (
	// SubtypeRaw is uncompressed PCM
	SubtypeRaw MediaSubtype = 0
	// SubtypeDSP is the graph-internal processing format
	SubtypeDSP MediaSubtype = 1
)

// Encoding identifies the PCM sample encoding of a raw audio stream
type Encoding int32

const (
	// EncodingS16LE is 16-bit signed integer, little endian
	EncodingS16LE Encoding = iota
	// EncodingS24LE is 24-bit signed integer, little endian, packed
	EncodingS24LE
	// EncodingS32LE is 32-bit signed integer, little endian
	EncodingS32LE
	// EncodingF32LE is 32-bit IEEE float, little endian
	EncodingF32LE
	// EncodingF64LE is 64-bit IEEE float, little endian
	EncodingF64LE
)

// Width returns the sample width in bytes, or 0 for an unknown encoding.
func (e Encoding) Width() uint32 {
	switch e {
	case EncodingS16LE:
		return 2
	case EncodingS24LE:
		return 3
	case EncodingS32LE, EncodingF32LE:
		return 4
	case EncodingF64LE:
		return 8
	default:
		return 0
	}
}

func (e Encoding) String() string {
	switch e {
	case EncodingS16LE:
		return "s16le"
	case EncodingS24LE:
		return "s24le"
	case EncodingS32LE:
		return "s32le"
	case EncodingF32LE:
		return "f32le"
	case EncodingF64LE:
		return "f64le"
	default:
		return "unknown"
	}
}

// ParseEncoding converts an encoding name as used in configuration files
// and flags back to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "s16le":
		return EncodingS16LE, nil
	case "s24le":
		return EncodingS24LE, nil
	case "s32le":
		return EncodingS32LE, nil
	case "f32le":
		return EncodingF32LE, nil
	case "f64le":
		return EncodingF64LE, nil
	default:
		return 0, fmt.Errorf("%w: unknown encoding %q", ErrInvalid, s)
	}
}

// Validation bounds. The node's cost model is independent of the format
// (it never resamples), so the bounds are permissive.
const (
	// MaxChannels is the highest accepted channel count
	MaxChannels = 64
	// MaxRate is the highest accepted sample rate in Hz
	MaxRate = 192000
)

// Descriptor specifies a negotiated audio format.
type Descriptor struct {
	Media    MediaType
	Subtype  MediaSubtype
	Encoding Encoding
	Channels uint32
	Rate     uint32
}

// Default returns the single format this node class advertises: raw
// stereo float at 48 kHz.
func Default() Descriptor {
	return Descriptor{
		Media:    MediaAudio,
		Subtype:  SubtypeRaw,
		Encoding: EncodingF32LE,
		Channels: 2,
		Rate:     48000,
	}
}

// FrameSize returns the byte size of one frame across all channels,
// or 0 if the encoding is unknown.
func (d Descriptor) FrameSize() uint32 {
	return d.Channels * d.Encoding.Width()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s %dch %dHz", d.Encoding, d.Channels, d.Rate)
}

// Validate checks whether the node can accept the descriptor. It is pure:
// no state is read or written, so it is safe to call concurrently with
// processing. A nil descriptor fails.
func Validate(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalid)
	}
	if d.Media != MediaAudio || d.Subtype != SubtypeRaw {
		return fmt.Errorf("%w: unsupported media type %d/%d", ErrInvalid, d.Media, d.Subtype)
	}
	if d.Channels == 0 || d.Channels > MaxChannels {
		return fmt.Errorf("%w: channel count %d out of [1,%d]", ErrInvalid, d.Channels, MaxChannels)
	}
	if d.Rate == 0 || d.Rate > MaxRate {
		return fmt.Errorf("%w: sample rate %d out of [1,%d]", ErrInvalid, d.Rate, MaxRate)
	}
	if d.Encoding.Width() == 0 {
		return fmt.Errorf("%w: unknown encoding %d", ErrInvalid, d.Encoding)
	}
	return nil
}

// Enumerate returns a page of advertised descriptors beginning at start,
// with at most max entries, and the index enumeration should resume from.
// This node class advertises exactly one descriptor, so only start == 0
// produces a non-empty page. Enumeration is restartable: repeated calls
// with the same arguments return the same page.
func Enumerate(start, max uint32) ([]Descriptor, uint32) {
	if start > 0 || max == 0 {
		return nil, start
	}
	return []Descriptor{Default()}, start + 1
}

// Matches reports whether d satisfies the filter. Zero-valued filter
// fields are wildcards, mirroring how hosts constrain enumeration.
func (d Descriptor) Matches(filter *Descriptor) bool {
	if filter == nil {
		return true
	}
	if filter.Channels != 0 && filter.Channels != d.Channels {
		return false
	}
	if filter.Rate != 0 && filter.Rate != d.Rate {
		return false
	}
	return true
}
