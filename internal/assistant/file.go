package assistant

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"jarvis/internal/bus"
	"jarvis/pkg/audioconv"
)

var ErrNothingHeard = errors.New("nothing recognised")

// RespondToFile transcribes a recorded clip and answers it once, as if it
// had been heard during a listening window.
func (a *Assistant) RespondToFile(ctx context.Context, decoder Decoder, path string, opt audioconv.Options) error {
	pcm, err := audioconv.DecodeFile(path, opt)
	if err != nil {
		return fmt.Errorf("reading audio file: %w", err)
	}

	text, err := decoder.Decode(ctx, [][]byte{audioconv.Float32ToBytes(pcm)})
	if err != nil {
		return fmt.Errorf("transcribing: %w", err)
	}
	text = normalize(text)
	if text == "" {
		return fmt.Errorf("%w in %s", ErrNothingHeard, path)
	}

	log.Info("Transcribed", "path", path, "text", text)
	a.publish(bus.KindHeard, text)
	a.Respond(ctx, text)
	return nil
}
