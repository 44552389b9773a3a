// Package audioconv decodes audio files into mono float32 PCM at the rate
// the speech engines expect.
package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const TargetRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

type Options struct {
	SampleRate int // output rate, TargetRate when zero
	MaxSamples int // 0 = no limit
}

func (o Options) rate() int {
	if o.SampleRate > 0 {
		return o.SampleRate
	}
	return TargetRate
}

// DecodeFile picks a decoder from the extension, falling back to the
// container magic for unknown extensions.
func DecodeFile(path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kind := strings.ToLower(filepath.Ext(path))
	switch kind {
	case ".wav", ".mp3", ".ogg", ".oga", ".opus":
	default:
		magic, _ := bufio.NewReader(f).Peek(4)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		switch {
		case string(magic) == "RIFF":
			kind = ".wav"
		case string(magic) == "OggS":
			kind = ".ogg"
		case bytes.HasPrefix(magic, []byte("ID3")):
			kind = ".mp3"
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
		}
	}

	var (
		pcm []float32
		sr  int
	)
	switch kind {
	case ".wav":
		pcm, sr, err = decodeWAV(f)
	case ".mp3":
		pcm, sr, err = decodeMP3(f)
	case ".opus":
		pcm, sr, err = decodeOpus(f)
	default:
		pcm, sr, err = decodeOgg(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	pcm = Resample(pcm, sr, opt.rate())
	if opt.MaxSamples > 0 && len(pcm) > opt.MaxSamples {
		pcm = pcm[:opt.MaxSamples]
	}
	return pcm, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("empty wav")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	channels, rate := 1, int(dec.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}

	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	x := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		x[i] = clamp(float32(float64(v) * scale))
	}
	return Downmix(x, channels), rate, nil
}

// decodeMP3 relies on go-mp3 always producing 16-bit stereo.
func decodeMP3(r io.Reader) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, err
	}
	return Downmix(BytesToFloat32(raw), 2), dec.SampleRate(), nil
}

// decodeOgg tries Vorbis first, then Opus.
func decodeOgg(r io.ReadSeeker) ([]float32, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err == nil && format != nil && format.Channels > 0 {
		return Downmix(pcm, format.Channels), format.SampleRate, nil
	}

	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return nil, 0, serr
	}
	pcm, rate, oerr := decodeOpus(r)
	if oerr != nil {
		return nil, 0, fmt.Errorf("not vorbis (%v) nor opus (%w)", err, oerr)
	}
	return pcm, rate, nil
}

// Downmix averages interleaved channels into mono.
func Downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// Resample converts between rates with linear interpolation.
func Resample(in []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	n := int(float64(len(in)) * ratio)
	out := make([]float32, n)
	for i := range out {
		src := float64(i) / ratio
		i0 := int(src)
		if i0 >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i0+1]*a
	}
	return out
}

func clamp(x float32) float32 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

// little-endian int16 <-> float32 helpers shared by the capture path and
// the decoders.

func Int16ToBytes(in []int16) []byte {
	out := make([]byte, 2*len(in))
	for i, v := range in {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

func BytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(b[2*i:]))) / 32768
	}
	return out
}

func Float32ToBytes(in []float32) []byte {
	out := make([]byte, 2*len(in))
	for i, v := range in {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(clamp(v)*32767)))
	}
	return out
}
