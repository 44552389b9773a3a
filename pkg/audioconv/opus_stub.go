//go:build !opus

package audioconv

import (
	"fmt"
	"io"
)

func decodeOpus(io.Reader) ([]float32, int, error) {
	return nil, 0, fmt.Errorf("%w: ogg/opus needs a build with -tags opus", ErrUnsupported)
}
