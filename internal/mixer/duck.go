// Package mixer lowers the volume of other PulseAudio clients while the
// microphone is open and restores it afterwards.
package mixer

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxVolume = 150

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id   int
	from int
	to   int
}

// Runner executes pactl. Tests replace it.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type pactl struct{}

func (pactl) Run(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}

type Ducker struct {
	mu        sync.Mutex
	active    bool
	selfNames []string
	saved     map[int]int // sink input id -> volume before ducking
	minVolume int
	runner    Runner
}

// NewDucker returns a ducker that leaves sink inputs whose
// application.name is in selfNames untouched.
func NewDucker(selfNames []string, minVolume int) *Ducker {
	return NewDuckerWithRunner(selfNames, minVolume, pactl{})
}

func NewDuckerWithRunner(selfNames []string, minVolume int, runner Runner) *Ducker {
	return &Ducker{
		selfNames: append([]string(nil), selfNames...),
		saved:     make(map[int]int),
		minVolume: clamp(minVolume, 0, maxVolume),
		runner:    runner,
	}
}

// Duck fades every foreign sink input to volume*factor, never below the
// configured minimum and never above its current volume. Calling Duck twice
// without Restore is a no-op. When a fade fails partway the ducker stays
// active so Restore can put back the inputs that were already lowered.
func (d *Ducker) Duck(ctx context.Context, factor float64, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	d.saved = make(map[int]int)
	var fades []fade
	for _, in := range inputs {
		to := int(math.Round(float64(in.Volume) * factor))
		to = min(in.Volume, clamp(to, d.minVolume, maxVolume))

		d.saved[in.ID] = in.Volume
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: to})
	}

	err = d.apply(ctx, fades, duration)
	d.active = len(d.saved) > 0
	return err
}

// Restore fades ducked sink inputs back to their saved volumes. Inputs
// that appeared after Duck are left alone.
func (d *Ducker) Restore(ctx context.Context, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, in := range inputs {
		orig, ok := d.saved[in.ID]
		if !ok {
			continue
		}
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: orig})
	}

	if err := d.apply(ctx, fades, duration); err != nil {
		return err
	}

	d.saved = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) list(ctx context.Context) ([]sinkInput, error) {
	out, err := d.runner.Run(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var foreign []sinkInput
	for _, in := range parseSinkInputs(string(out)) {
		if !d.isSelf(in) {
			foreign = append(foreign, in)
		}
	}
	return foreign, nil
}

func (d *Ducker) isSelf(in sinkInput) bool {
	for _, name := range d.selfNames {
		if in.AppName == name {
			return true
		}
	}
	return false
}

// apply steps every input linearly from its current to its target volume
// over duration, in steps of at least 10ms.
func (d *Ducker) apply(ctx context.Context, fades []fade, duration time.Duration) error {
	if len(fades) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond

	steps := int(duration / minStep)
	if steps < 1 {
		return d.setAll(ctx, fades, 1)
	}
	stepDuration := duration / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		if err := d.setAll(ctx, fades, float64(i)/float64(steps)); err != nil {
			return err
		}
		if i == steps {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(stepDuration):
		}
	}
	return nil
}

func (d *Ducker) setAll(ctx context.Context, fades []fade, frac float64) error {
	for _, f := range fades {
		v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
		v = clamp(v, 0, maxVolume)

		if _, err := d.runner.Run(ctx, "set-sink-input-volume", strconv.Itoa(f.id), fmt.Sprintf("%d%%", v)); err != nil {
			return fmt.Errorf("set volume id=%d: %w", f.id, err)
		}
	}
	return nil
}

// parseSinkInputs reads the output of `pactl list sink-inputs`.
func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	if len(blocks) <= 1 {
		return nil
	}

	var res []sinkInput
	for _, block := range blocks[1:] {
		header, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && in.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) == 2 {
					in.Volume, _ = strconv.Atoi(m[1])
				}
			}

			if strings.HasPrefix(line, "application.name =") && in.AppName == "" {
				_, rest, _ := strings.Cut(line, `"`)
				in.AppName, _, _ = strings.Cut(rest, `"`)
			}
		}

		if in.Volume == 0 && in.AppName == "" {
			continue
		}
		res = append(res, in)
	}
	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
