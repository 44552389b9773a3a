package assistant

import (
	"fmt"
	"io"
	log "log/slog"
	"os"

	"jarvis/internal/bus"
)

type Synth interface {
	Speak(text string) error
}

// ConsoleSpeaker prints each line, mirrors it to the bus and then blocks
// in the synthesizer until playback is over.
type ConsoleSpeaker struct {
	name      string
	out       io.Writer
	synth     Synth
	publisher Publisher
}

func NewConsoleSpeaker(name string, out io.Writer, synth Synth, publisher Publisher) *ConsoleSpeaker {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSpeaker{name: name, out: out, synth: synth, publisher: publisher}
}

func (s *ConsoleSpeaker) Say(text string) {
	fmt.Fprintf(s.out, "\n%s: %s\n", s.name, text)

	if s.publisher != nil {
		if err := s.publisher.Publish(bus.KindReply, text); err != nil {
			log.Warn("Bus publish failed", "err", err)
		}
	}

	if s.synth == nil {
		return
	}
	if err := s.synth.Speak(text); err != nil {
		log.Error("Failed to voice out", "err", err)
	}
}
