package assistant

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"time"
)

type Capturer interface {
	Capture(ctx context.Context, window time.Duration) ([][]byte, error)
}

type Decoder interface {
	Decode(ctx context.Context, chunks [][]byte) (string, error)
}

type Chimer interface {
	Play() error
}

type Ducker interface {
	Duck(ctx context.Context, factor float64, fade time.Duration) error
	Restore(ctx context.Context, fade time.Duration) error
}

type MicOptions struct {
	Window time.Duration
	Out    io.Writer

	// Optional.
	Chime      Chimer
	Ducker     Ducker
	DuckFactor float64
	DuckFade   time.Duration
}

// MicListener records one fixed window from the microphone and decodes it.
type MicListener struct {
	capturer Capturer
	decoder  Decoder
	opt      MicOptions
}

func NewMicListener(capturer Capturer, decoder Decoder, opt MicOptions) *MicListener {
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	return &MicListener{capturer: capturer, decoder: decoder, opt: opt}
}

func (m *MicListener) Listen(ctx context.Context) (string, error) {
	if m.opt.Chime != nil {
		if err := m.opt.Chime.Play(); err != nil {
			log.Debug("Chime failed", "err", err)
		}
	}

	if m.opt.Ducker != nil {
		if err := m.opt.Ducker.Duck(ctx, m.opt.DuckFactor, m.opt.DuckFade); err != nil {
			log.Warn("Failed to duck other streams", "err", err)
		}
	}

	fmt.Fprintln(m.opt.Out, "Listening... (or type your command below)")
	chunks, err := m.capturer.Capture(ctx, m.opt.Window)

	// Restore is a no-op when nothing was lowered, so it also runs after a
	// partly failed Duck.
	if m.opt.Ducker != nil {
		if rerr := m.opt.Ducker.Restore(context.WithoutCancel(ctx), m.opt.DuckFade); rerr != nil {
			log.Warn("Failed to restore other streams", "err", rerr)
		}
	}

	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	if len(chunks) == 0 {
		return "", nil
	}

	text, err := m.decoder.Decode(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return text, nil
}
