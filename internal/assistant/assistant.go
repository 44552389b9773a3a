// Package assistant runs the listen, dispatch and speak loop.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"strings"

	"jarvis/internal/bus"
	"jarvis/internal/command"
)

const (
	msgListening = "Yes, I'm listening."
	msgOffline   = "No internet. Switching to offline mode."
	msgApology   = "Sorry, I couldn't connect online right now."
	promptLabel  = "Type your command: "
)

type Listener interface {
	Listen(ctx context.Context) (string, error)
}

type Prompter interface {
	Prompt(ctx context.Context, label string) (string, error)
}

type Dispatcher interface {
	Handle(ctx context.Context, cmd string) command.Outcome
}

type Prober interface {
	Online(ctx context.Context) bool
}

type Chatter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Speaker interface {
	Say(text string)
}

type Publisher interface {
	Publish(kind, content string) error
}

type Options struct {
	Name       string
	WakePhrase string
	// Inbox carries typed commands from the control socket.
	Inbox <-chan string
	// Out receives the console hints; defaults to stdout.
	Out       io.Writer
	Publisher Publisher
}

type Assistant struct {
	listener   Listener
	prompter   Prompter
	dispatcher Dispatcher
	prober     Prober
	chatter    Chatter
	speaker    Speaker
	opt        Options
}

// New wires the loop. listener may be nil, in which case every command is
// typed.
func New(
	listener Listener,
	prompter Prompter,
	dispatcher Dispatcher,
	prober Prober,
	chatter Chatter,
	speaker Speaker,
	opt Options,
) *Assistant {
	if opt.Name == "" {
		opt.Name = "Jarvis"
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	return &Assistant{
		listener:   listener,
		prompter:   prompter,
		dispatcher: dispatcher,
		prober:     prober,
		chatter:    chatter,
		speaker:    speaker,
		opt:        opt,
	}
}

// Run loops until the user says goodbye, stdin is closed or ctx is done.
// A goodbye or closed stdin returns nil.
func (a *Assistant) Run(ctx context.Context) error {
	a.speaker.Say(fmt.Sprintf("%s is now active. How can I assist you?", a.opt.Name))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := a.next(ctx)
		if errors.Is(err, io.EOF) {
			log.Info("Input closed")
			return nil
		}
		if err != nil {
			return err
		}
		if text == "" {
			continue
		}

		if a.opt.WakePhrase != "" && strings.Contains(text, a.opt.WakePhrase) {
			a.speaker.Say(msgListening)

			text, err = a.hear(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if text == "" {
				continue
			}
		}

		if a.Respond(ctx, text) == command.Exit {
			log.Info("Goodbye received, stopping")
			return nil
		}
	}
}

// next prefers a command queued on the control socket over listening.
func (a *Assistant) next(ctx context.Context) (string, error) {
	select {
	case text, ok := <-a.opt.Inbox:
		if ok {
			text = normalize(text)
			log.Info("Control command", "text", text)
			return text, nil
		}
	default:
	}

	if a.listener != nil && a.opt.WakePhrase != "" {
		fmt.Fprintf(a.opt.Out, "\nSay '%s' or type your command below.\n", a.opt.WakePhrase)
	}
	return a.hear(ctx)
}

// hear listens once and falls back to a typed command when nothing was
// recognised.
func (a *Assistant) hear(ctx context.Context) (string, error) {
	var text string

	if a.listener != nil {
		heard, err := a.listener.Listen(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if err != nil {
			log.Warn("Listening failed", "err", err)
		}
		text = normalize(heard)
	}

	if text != "" {
		log.Info("Heard", "text", text)
		a.publish(bus.KindHeard, text)
		return text, nil
	}

	typed, err := a.prompter.Prompt(ctx, promptLabel)
	if err != nil {
		return "", err
	}
	typed = normalize(typed)
	if typed != "" {
		a.publish(bus.KindHeard, typed)
	}
	return typed, nil
}

// Respond runs the local command table, then the online chat when the
// network is reachable, then the offline message.
func (a *Assistant) Respond(ctx context.Context, text string) command.Outcome {
	outcome := a.dispatcher.Handle(ctx, text)
	if outcome != command.NoMatch {
		return outcome
	}

	if !a.prober.Online(ctx) {
		a.speaker.Say(msgOffline)
		return command.NoMatch
	}

	reply, err := a.chatter.Complete(ctx, text)
	if err != nil {
		log.Error("Online mode failed", "err", err)
		a.speaker.Say(msgApology)
		return command.NoMatch
	}

	a.speaker.Say(reply)
	return command.NoMatch
}

func (a *Assistant) publish(kind, content string) {
	if a.opt.Publisher == nil {
		return
	}
	if err := a.opt.Publisher.Publish(kind, content); err != nil {
		log.Warn("Bus publish failed", "err", err)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
