package command

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"jarvis/internal/config"
)

type Outcome int

const (
	NoMatch Outcome = iota
	Handled
	Exit
)

func (o Outcome) String() string {
	switch o {
	case Handled:
		return "handled"
	case Exit:
		return "exit"
	default:
		return "no_match"
	}
}

type Speaker interface {
	Say(text string)
}

// Desktop performs the side effects of local commands.
type Desktop interface {
	OpenURL(ctx context.Context, url string) error
	OpenPath(ctx context.Context, path string) error
	StartApp(ctx context.Context, path string) error
	KillProcess(ctx context.Context, name string) error
	Exists(path string) bool
}

type rule struct {
	name  string
	match func(cmd string) bool
	run   func(ctx context.Context, cmd string) Outcome
}

type Dispatcher struct {
	speaker Speaker
	desktop Desktop
	tables  config.Commands
	now     func() time.Time
	rules   []rule
}

func NewDispatcher(speaker Speaker, desktop Desktop, tables config.Commands) *Dispatcher {
	d := &Dispatcher{
		speaker: speaker,
		desktop: desktop,
		tables:  tables,
		now:     time.Now,
	}
	d.rules = d.buildRules()
	return d
}

// SetClock replaces the time source of the time and date rules.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Rules returns the rule names in evaluation order.
func (d *Dispatcher) Rules() []string {
	names := make([]string, len(d.rules))
	for i, r := range d.rules {
		names[i] = r.name
	}
	return names
}

// Handle runs the first rule whose keyword is contained in cmd.
// cmd must already be lowercase.
func (d *Dispatcher) Handle(ctx context.Context, cmd string) Outcome {
	for _, r := range d.rules {
		if !r.match(cmd) {
			continue
		}
		log.Debug("Matched local command", "rule", r.name, "text", cmd)
		return r.run(ctx, cmd)
	}
	return NoMatch
}

// buildRules fixes the evaluation order. Site and folder rules must come
// before the generic "open" rule since their keywords contain "open".
func (d *Dispatcher) buildRules() []rule {
	rules := []rule{
		{name: "time", match: contains("time"), run: d.tellTime},
		{name: "date", match: contains("date"), run: d.tellDate},
	}

	for _, site := range d.tables.Sites {
		if strings.TrimSpace(site.Name) == "" {
			continue
		}
		rules = append(rules, rule{
			name:  "open " + site.Name,
			match: contains("open " + site.Name),
			run:   d.openSite(site),
		})
	}

	rules = append(rules,
		rule{name: "open folder", match: contains("open folder"), run: d.openFolder},
		rule{name: "open", match: contains("open"), run: d.openApp},
		rule{name: "close", match: contains("close"), run: d.closeApp},
		rule{name: "exit", match: contains("exit", "quit", "bye"), run: d.exit},
	)

	return rules
}

func contains(words ...string) func(string) bool {
	return func(cmd string) bool {
		for _, w := range words {
			if strings.Contains(cmd, w) {
				return true
			}
		}
		return false
	}
}

func (d *Dispatcher) tellTime(_ context.Context, _ string) Outcome {
	d.speaker.Say("The time is " + d.now().Format("03:04 PM"))
	return Handled
}

func (d *Dispatcher) tellDate(_ context.Context, _ string) Outcome {
	d.speaker.Say("Today's date is " + d.now().Format("January 02, 2006"))
	return Handled
}

func (d *Dispatcher) openSite(site config.Site) func(context.Context, string) Outcome {
	return func(ctx context.Context, _ string) Outcome {
		d.speaker.Say("Opening " + site.Title)
		if err := d.desktop.OpenURL(ctx, site.URL); err != nil {
			log.Error("Failed to open browser", "url", site.URL, "err", err)
		}
		return Handled
	}
}

func (d *Dispatcher) openFolder(ctx context.Context, cmd string) Outcome {
	name := stripWords(cmd, "open", "folder")

	path, ok := d.tables.Folders[name]
	if !ok {
		d.speaker.Say("Sorry, I don't know that folder name.")
		return Handled
	}

	d.speaker.Say(fmt.Sprintf("Opening %s folder", name))
	if err := d.desktop.OpenPath(ctx, path); err != nil {
		log.Error("Failed to open folder", "path", path, "err", err)
	}
	return Handled
}

func (d *Dispatcher) openApp(ctx context.Context, cmd string) Outcome {
	name := stripWords(cmd, "open")

	path, ok := d.tables.Apps[name]
	if !ok || !d.desktop.Exists(path) {
		d.speaker.Say(fmt.Sprintf("I couldn't find %s on your computer.", name))
		return Handled
	}

	d.speaker.Say("Opening " + name)
	if err := d.desktop.StartApp(ctx, path); err != nil {
		log.Error("Failed to start app", "path", path, "err", err)
	}
	return Handled
}

func (d *Dispatcher) closeApp(ctx context.Context, cmd string) Outcome {
	name := stripWords(cmd, "close")

	proc, ok := d.tables.Processes[name]
	if !ok {
		d.speaker.Say("I don't know how to close that app.")
		return Handled
	}

	if err := d.desktop.KillProcess(ctx, proc); err != nil {
		log.Warn("Failed to close app", "process", proc, "err", err)
		d.speaker.Say("Couldn't close " + name)
		return Handled
	}

	d.speaker.Say("Closed " + name)
	return Handled
}

func (d *Dispatcher) exit(_ context.Context, _ string) Outcome {
	d.speaker.Say("Goodbye")
	return Exit
}

// stripWords removes every occurrence of the given keywords and collapses
// the remaining whitespace.
func stripWords(cmd string, words ...string) string {
	for _, w := range words {
		cmd = strings.ReplaceAll(cmd, w, " ")
	}
	return strings.Join(strings.Fields(cmd), " ")
}
