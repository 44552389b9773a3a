//go:build opus

package audioconv

import (
	"bytes"
	"errors"
	"io"

	popus "github.com/pekim/opus"
)

const opusRate = 48000

func decodeOpus(r io.Reader) ([]float32, int, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, err
		}
		rs = bytes.NewReader(b)
	}

	dec, err := popus.NewDecoder(rs)
	if err != nil {
		return nil, 0, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	var pcm []float32
	buf := make([]int16, opusRate*ch/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, BytesToFloat32(Int16ToBytes(buf[:n*ch]))...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}

	return Downmix(pcm, ch), opusRate, nil
}
