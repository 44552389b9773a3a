// Package stt turns captured PCM into lowercase transcripts.
package stt

import (
	"context"
	"fmt"
	"strings"
)

// Decoder consumes one listening window of little-endian 16-bit mono PCM
// chunks and returns the first finalized transcript, or "" for silence.
type Decoder interface {
	Decode(ctx context.Context, chunks [][]byte) (string, error)
	Close() error
}

type Config struct {
	Engine     string // "vosk" or "whisper"
	ModelPath  string
	SampleRate int

	// whisper only
	Language  string
	Threads   int
	Translate bool
	Prompt    string
	BeamSize  int
}

func New(cfg Config) (Decoder, error) {
	switch cfg.Engine {
	case "vosk":
		return NewVosk(cfg.ModelPath, cfg.SampleRate)
	case "whisper":
		return NewWhisper(cfg.ModelPath, Options{
			Language:      cfg.Language,
			TranslateToEn: cfg.Translate,
			Threads:       cfg.Threads,
			InitialPrompt: cfg.Prompt,
			BeamSize:      cfg.BeamSize,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

func normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
