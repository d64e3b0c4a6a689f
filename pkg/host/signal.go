package host

import (
	"encoding/binary"
	"math"

	"github.com/go-audio/audio"

	"github.com/graphnode-go/graphnode/pkg/format"
)

// Silence returns a zeroed PCM payload for the given frame count.
func Silence(d format.Descriptor, frames int) []byte {
	return make([]byte, frames*int(d.FrameSize()))
}

// TestTone renders a full-scale-adjacent sine wave of freq Hz into an
// interleaved PCM payload for the descriptor. The signal is built as a
// go-audio float buffer and then encoded per the descriptor's sample
// encoding.
func TestTone(d format.Descriptor, frames int, freq float64) []byte {
	channels := int(d.Channels)
	buf := &audio.FloatBuffer{
		Format: d.AudioFormat(),
		Data:   make([]float64, frames*channels),
	}
	step := 2 * math.Pi * freq / float64(d.Rate)
	for frame := 0; frame < frames; frame++ {
		v := 0.8 * math.Sin(step*float64(frame))
		for ch := 0; ch < channels; ch++ {
			buf.Data[frame*channels+ch] = v
		}
	}
	return encodePCM(d, buf)
}

// encodePCM serializes a float buffer to little-endian PCM bytes.
func encodePCM(d format.Descriptor, buf *audio.FloatBuffer) []byte {
	width := int(d.Encoding.Width())
	out := make([]byte, len(buf.Data)*width)
	for i, v := range buf.Data {
		p := out[i*width:]
		switch d.Encoding {
		case format.EncodingS16LE:
			binary.LittleEndian.PutUint16(p, uint16(int16(v*math.MaxInt16)))
		case format.EncodingS24LE:
			s := int32(v * 8388607)
			p[0] = byte(s)
			p[1] = byte(s >> 8)
			p[2] = byte(s >> 16)
		case format.EncodingS32LE:
			binary.LittleEndian.PutUint32(p, uint32(int32(v*math.MaxInt32)))
		case format.EncodingF32LE:
			binary.LittleEndian.PutUint32(p, math.Float32bits(float32(v)))
		case format.EncodingF64LE:
			binary.LittleEndian.PutUint64(p, math.Float64bits(v))
		}
	}
	return out
}
