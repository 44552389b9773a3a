package audio

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"jarvis/pkg/audioconv"
)

const (
	DefaultSampleRate      = 16000
	DefaultFramesPerBuffer = 8000
)

// Recorder captures mono 16-bit microphone audio for fixed windows.
type Recorder struct {
	sampleRate      int
	framesPerBuffer int
}

func NewRecorder(sampleRate, framesPerBuffer int) *Recorder {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}
	return &Recorder{sampleRate: sampleRate, framesPerBuffer: framesPerBuffer}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Capture records for window and returns the captured buffers in arrival
// order as little-endian PCM. The portaudio callback runs on the audio
// thread and only appends to the queue.
func (r *Recorder) Capture(ctx context.Context, window time.Duration) ([][]byte, error) {
	q := &queue{}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), r.framesPerBuffer, func(in []int16) {
		q.push(audioconv.Int16ToBytes(in))
	})
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}

	timer := time.NewTimer(window)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	if err := stream.Stop(); err != nil {
		log.Warn("Failed to stop stream", "err", err)
	}

	chunks := q.drain()
	log.Debug("Captured audio", "chunks", len(chunks), "window", window)

	return chunks, ctx.Err()
}

type queue struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (q *queue) push(b []byte) {
	q.mu.Lock()
	q.chunks = append(q.chunks, b)
	q.mu.Unlock()
}

func (q *queue) drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.chunks
	q.chunks = nil
	return out
}
