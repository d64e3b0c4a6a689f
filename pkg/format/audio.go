package format

import "github.com/go-audio/audio"

// AudioFormat converts the descriptor to a go-audio format for use with
// go-audio buffers when a host synthesizes or inspects PCM data.
func (d Descriptor) AudioFormat() *audio.Format {
	return &audio.Format{
		NumChannels: int(d.Channels),
		SampleRate:  int(d.Rate),
	}
}

// FromAudioFormat builds a raw audio descriptor from a go-audio format
// and an explicit sample encoding.
func FromAudioFormat(f *audio.Format, enc Encoding) Descriptor {
	d := Descriptor{
		Media:    MediaAudio,
		Subtype:  SubtypeRaw,
		Encoding: enc,
	}
	if f != nil {
		d.Channels = uint32(f.NumChannels)
		d.Rate = uint32(f.SampleRate)
	}
	return d
}
