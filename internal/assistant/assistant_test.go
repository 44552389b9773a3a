package assistant_test

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"jarvis/internal/assistant"
	"jarvis/internal/command"
	"jarvis/internal/config"
)

type scriptedListener struct {
	results []string
	calls   int
}

func (l *scriptedListener) Listen(_ context.Context) (string, error) {
	l.calls++
	if len(l.results) == 0 {
		return "", nil
	}
	r := l.results[0]
	l.results = l.results[1:]
	return r, nil
}

type scriptedPrompter struct {
	lines []string
	calls int
}

func (p *scriptedPrompter) Prompt(_ context.Context, _ string) (string, error) {
	p.calls++
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	l := p.lines[0]
	p.lines = p.lines[1:]
	return l, nil
}

type recordingSpeaker struct {
	said []string
}

func (s *recordingSpeaker) Say(text string) { s.said = append(s.said, text) }

type fakeProber struct {
	online bool
	calls  int
}

func (p *fakeProber) Online(_ context.Context) bool {
	p.calls++
	return p.online
}

type fakeChatter struct {
	reply   string
	err     error
	prompts []string
}

func (c *fakeChatter) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

type fakeDesktop struct {
	urls    []string
	started []string
}

func (d *fakeDesktop) OpenURL(_ context.Context, url string) error {
	d.urls = append(d.urls, url)
	return nil
}
func (d *fakeDesktop) OpenPath(context.Context, string) error { return nil }
func (d *fakeDesktop) StartApp(_ context.Context, path string) error {
	d.started = append(d.started, path)
	return nil
}
func (d *fakeDesktop) KillProcess(context.Context, string) error { return nil }
func (d *fakeDesktop) Exists(string) bool                        { return true }

type harness struct {
	listener *scriptedListener
	prompter *scriptedPrompter
	speaker  *recordingSpeaker
	prober   *fakeProber
	chatter  *fakeChatter
	desktop  *fakeDesktop
	inbox    chan string
	a        *assistant.Assistant
}

func newHarness(heard []string, typed []string) *harness {
	h := &harness{
		listener: &scriptedListener{results: heard},
		prompter: &scriptedPrompter{lines: typed},
		speaker:  &recordingSpeaker{},
		prober:   &fakeProber{online: true},
		chatter:  &fakeChatter{reply: "Here is a joke."},
		desktop:  &fakeDesktop{},
		inbox:    make(chan string, 4),
	}

	tables := config.Default().Commands
	tables.Apps = map[string]string{"notepad": "/usr/bin/gedit"}
	dispatcher := command.NewDispatcher(h.speaker, h.desktop, tables)
	dispatcher.SetClock(func() time.Time {
		return time.Date(2026, time.October, 18, 9, 30, 0, 0, time.Local)
	})

	h.a = assistant.New(h.listener, h.prompter, dispatcher, h.prober, h.chatter, h.speaker, assistant.Options{
		Name:       "Jarvis",
		WakePhrase: "hey jarvis",
		Inbox:      h.inbox,
		Out:        io.Discard,
	})
	return h
}

func TestRun_ExitStopsLoop(t *testing.T) {
	for _, word := range []string{"exit", "Quit now", "ok BYE"} {
		h := newHarness([]string{word, "what time is it"}, nil)

		if err := h.a.Run(context.Background()); err != nil {
			t.Fatalf("%q: unexpected error: %v", word, err)
		}

		if h.listener.calls != 1 {
			t.Errorf("%q: loop kept listening after goodbye: %d calls", word, h.listener.calls)
		}
		want := []string{"Jarvis is now active. How can I assist you?", "Goodbye"}
		if !reflect.DeepEqual(h.speaker.said, want) {
			t.Errorf("%q: said %v, want %v", word, h.speaker.said, want)
		}
	}
}

func TestRun_EmptyTranscriptFallsBackToTyping(t *testing.T) {
	h := newHarness([]string{"   "}, []string{"  What TIME is it "})

	if err := h.a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.prompter.calls < 1 {
		t.Fatal("typed input was never requested")
	}
	if len(h.speaker.said) < 2 || h.speaker.said[1] != "The time is 09:30 AM" {
		t.Errorf("typed command not dispatched: %v", h.speaker.said)
	}
	if len(h.chatter.prompts) != 0 {
		t.Errorf("empty transcript reached the chat: %v", h.chatter.prompts)
	}
}

func TestRun_EmptyTypedInputIsSkipped(t *testing.T) {
	h := newHarness(nil, []string{"", "  "})

	if err := h.a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.prober.calls != 0 || len(h.chatter.prompts) != 0 {
		t.Errorf("empty command was dispatched: probes=%d prompts=%v", h.prober.calls, h.chatter.prompts)
	}
	if len(h.speaker.said) != 1 {
		t.Errorf("expected only the greeting, got %v", h.speaker.said)
	}
}

func TestRun_WakePhrase(t *testing.T) {
	h := newHarness([]string{"hey jarvis", "open google"}, []string{"exit"})

	if err := h.a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"Jarvis is now active. How can I assist you?",
		"Yes, I'm listening.",
		"Opening Google",
		"Goodbye",
	}
	if !reflect.DeepEqual(h.speaker.said, want) {
		t.Errorf("said %v, want %v", h.speaker.said, want)
	}
	if !reflect.DeepEqual(h.desktop.urls, []string{"https://www.google.com"}) {
		t.Errorf("unexpected urls %v", h.desktop.urls)
	}
	if len(h.desktop.started) != 0 {
		t.Errorf("generic open fired: %v", h.desktop.started)
	}
}

func TestRun_InboxPreemptsListening(t *testing.T) {
	h := newHarness(nil, nil)
	h.inbox <- "  EXIT "

	if err := h.a.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.listener.calls != 0 {
		t.Errorf("listened despite a queued command: %d", h.listener.calls)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	h := newHarness(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.a.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRespond_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		online     bool
		chatErr    error
		wantSaid   string
		wantPrompt bool
	}{
		{name: "online", online: true, wantSaid: "Here is a joke.", wantPrompt: true},
		{name: "offline", online: false, wantSaid: "No internet. Switching to offline mode."},
		{name: "chat failure", online: true, chatErr: errors.New("429 quota"), wantSaid: "Sorry, I couldn't connect online right now.", wantPrompt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(nil, nil)
			h.prober.online = tt.online
			h.chatter.err = tt.chatErr

			if got := h.a.Respond(context.Background(), "tell me a joke"); got != command.NoMatch {
				t.Errorf("unexpected outcome %s", got)
			}

			if h.prober.calls != 1 {
				t.Errorf("expected one probe, got %d", h.prober.calls)
			}
			if tt.wantPrompt != (len(h.chatter.prompts) == 1) {
				t.Errorf("chat prompts %v, want called=%v", h.chatter.prompts, tt.wantPrompt)
			}
			if len(h.speaker.said) != 1 || h.speaker.said[0] != tt.wantSaid {
				t.Errorf("said %v, want %q", h.speaker.said, tt.wantSaid)
			}
		})
	}
}

func TestRespond_LocalMatchSkipsProbe(t *testing.T) {
	h := newHarness(nil, nil)

	if got := h.a.Respond(context.Background(), "what is the date"); got != command.Handled {
		t.Fatalf("unexpected outcome %s", got)
	}
	if h.prober.calls != 0 {
		t.Errorf("probe called for a local command")
	}
	if !strings.HasPrefix(h.speaker.said[0], "Today's date is October 18, 2026") {
		t.Errorf("unexpected reply %v", h.speaker.said)
	}
}
