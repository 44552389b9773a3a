package mixer

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

const sinkInputs = `Sink Input #41
	Driver: protocol-native.c
	Owner Module: 10
	Volume: front-left: 52429 /  80% / -5.81 dB,   front-right: 52429 /  80% / -5.81 dB
	Properties:
		application.name = "Firefox"
		media.name = "AudioStream"

Sink Input #57
	Driver: protocol-native.c
	Volume: mono: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "jarvis"

Sink Input #60
	Driver: protocol-native.c
	Volume: front-left: 19661 /  30% / -31.37 dB,   front-right: 19661 /  30% / -31.37 dB
	Properties:
		application.name = "spotify"
`

func TestParseSinkInputs(t *testing.T) {
	got := parseSinkInputs(sinkInputs)
	want := []sinkInput{
		{ID: 41, Volume: 80, AppName: "Firefox"},
		{ID: 57, Volume: 100, AppName: "jarvis"},
		{ID: 60, Volume: 30, AppName: "spotify"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}

	if got := parseSinkInputs(""); got != nil {
		t.Errorf("expected nil for empty output, got %+v", got)
	}
}

type fakePactl struct {
	list   string
	sets   []string
	err    error
	failID string
}

func (f *fakePactl) Run(_ context.Context, args ...string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if args[0] == "list" {
		return []byte(f.list), nil
	}
	if args[1] == f.failID {
		return nil, errors.New("boom")
	}
	f.sets = append(f.sets, strings.Join(args[1:], " "))
	return nil, nil
}

func TestDucker_DuckAndRestore(t *testing.T) {
	runner := &fakePactl{list: sinkInputs}
	d := NewDuckerWithRunner([]string{"jarvis"}, 10, runner)

	if err := d.Duck(context.Background(), 0.25, 0); err != nil {
		t.Fatalf("duck: %v", err)
	}
	want := []string{"41 20%", "60 10%"}
	if !reflect.DeepEqual(runner.sets, want) {
		t.Errorf("duck sets: got %v, want %v", runner.sets, want)
	}

	runner.sets = nil
	if err := d.Duck(context.Background(), 0.25, 0); err != nil {
		t.Fatalf("second duck: %v", err)
	}
	if len(runner.sets) != 0 {
		t.Errorf("second duck should be a no-op, got %v", runner.sets)
	}

	// pactl now reports the ducked volumes
	runner.list = strings.NewReplacer("80%", "20%", "30%", "10%").Replace(sinkInputs)
	if err := d.Restore(context.Background(), 0); err != nil {
		t.Fatalf("restore: %v", err)
	}
	want = []string{"41 80%", "60 30%"}
	if !reflect.DeepEqual(runner.sets, want) {
		t.Errorf("restore sets: got %v, want %v", runner.sets, want)
	}

	runner.sets = nil
	if err := d.Restore(context.Background(), 0); err != nil {
		t.Fatalf("second restore: %v", err)
	}
	if len(runner.sets) != 0 {
		t.Errorf("second restore should be a no-op, got %v", runner.sets)
	}
}

func TestDucker_Fade(t *testing.T) {
	runner := &fakePactl{list: `Sink Input #7
	Volume: mono: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "mpv"
`}
	d := NewDuckerWithRunner(nil, 0, runner)

	if err := d.Duck(context.Background(), 0.5, 40*time.Millisecond); err != nil {
		t.Fatalf("duck: %v", err)
	}
	want := []string{"7 88%", "7 75%", "7 63%", "7 50%"}
	if !reflect.DeepEqual(runner.sets, want) {
		t.Errorf("fade steps: got %v, want %v", runner.sets, want)
	}
}

func TestDucker_PactlMissing(t *testing.T) {
	d := NewDuckerWithRunner(nil, 0, &fakePactl{err: errors.New("executable file not found")})

	if err := d.Duck(context.Background(), 0.5, 0); err == nil {
		t.Error("expected error when pactl fails")
	}
	if err := d.Restore(context.Background(), 0); err != nil {
		t.Errorf("restore without duck should be a no-op, got %v", err)
	}
}

func TestDucker_PartialFailureIsRestored(t *testing.T) {
	runner := &fakePactl{list: sinkInputs, failID: "60"}
	d := NewDuckerWithRunner([]string{"jarvis"}, 10, runner)

	if err := d.Duck(context.Background(), 0.3, 0); err == nil {
		t.Fatal("expected duck error")
	}
	if want := []string{"41 24%"}; !reflect.DeepEqual(runner.sets, want) {
		t.Errorf("duck sets: got %v, want %v", runner.sets, want)
	}

	runner.sets = nil
	runner.failID = ""
	runner.list = strings.Replace(sinkInputs, "80%", "24%", 2)
	if err := d.Restore(context.Background(), 0); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if want := []string{"41 80%", "60 30%"}; !reflect.DeepEqual(runner.sets, want) {
		t.Errorf("restore sets: got %v, want %v", runner.sets, want)
	}
}

func TestDucker_NeverRaisesQuietInputs(t *testing.T) {
	runner := &fakePactl{list: sinkInputs}
	d := NewDuckerWithRunner([]string{"jarvis"}, 40, runner)

	if err := d.Duck(context.Background(), 0.25, 0); err != nil {
		t.Fatalf("duck: %v", err)
	}
	if want := []string{"41 40%", "60 30%"}; !reflect.DeepEqual(runner.sets, want) {
		t.Errorf("duck sets: got %v, want %v", runner.sets, want)
	}
}
