package stt

import (
	"context"
	"encoding/json"
	"fmt"

	vosk "github.com/alphacep/vosk-api/go"
)

type voskResult struct {
	Text string `json:"text"`
}

// Vosk is a streaming Kaldi recognizer. The model stays loaded for the
// life of the process; each window gets a fresh recognizer.
type Vosk struct {
	model      *vosk.VoskModel
	sampleRate float64
}

func NewVosk(modelDir string, sampleRate int) (*Vosk, error) {
	vosk.SetLogLevel(-1)

	m, err := vosk.NewModel(modelDir)
	if err != nil {
		return nil, fmt.Errorf("load vosk model %s: %w", modelDir, err)
	}
	return &Vosk{model: m, sampleRate: float64(sampleRate)}, nil
}

func (v *Vosk) Decode(ctx context.Context, chunks [][]byte) (string, error) {
	rec, err := vosk.NewRecognizer(v.model, v.sampleRate)
	if err != nil {
		return "", fmt.Errorf("new recognizer: %w", err)
	}
	defer rec.Free()

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if rec.AcceptWaveform(chunk) == 0 {
			continue
		}
		if text, err := parseVosk(rec.Result()); err != nil {
			return "", err
		} else if text != "" {
			return text, nil
		}
	}

	return parseVosk(rec.FinalResult())
}

func (v *Vosk) Close() error {
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
	return nil
}

func parseVosk(raw string) (string, error) {
	var res voskResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return "", fmt.Errorf("unmarshal vosk result: %w (raw: %s)", err, raw)
	}
	return normalize(res.Text), nil
}
