package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoAPIKey = errors.New("OPENAI_API_KEY not set")
	ErrNoModel  = errors.New("speech model not found")
	ErrBadSite  = errors.New("site needs a name and a url")
)

const (
	EngineVosk    = "vosk"
	EngineWhisper = "whisper"
)

type Config struct {
	Assistant AssistantConfig `yaml:"assistant"`
	Audio     AudioConfig     `yaml:"audio"`
	STT       STTConfig       `yaml:"stt"`
	TTS       TTSConfig       `yaml:"tts"`
	Chat      ChatConfig      `yaml:"chat"`
	Probe     ProbeConfig     `yaml:"probe"`
	IPC       IPCConfig       `yaml:"ipc"`
	Bus       BusConfig       `yaml:"bus"`
	Commands  Commands        `yaml:"commands"`
}

type AssistantConfig struct {
	Name         string        `yaml:"name"`
	WakePhrase   string        `yaml:"wake_phrase"`
	ListenWindow time.Duration `yaml:"listen_window"`
}

type AudioConfig struct {
	SampleRate      int           `yaml:"sample_rate"`
	FramesPerBuffer int           `yaml:"frames_per_buffer"`
	Chime           string        `yaml:"chime"`
	Duck            bool          `yaml:"duck"`
	DuckFactor      float64       `yaml:"duck_factor"`
	DuckMinVolume   int           `yaml:"duck_min_volume"`
	DuckFade        time.Duration `yaml:"duck_fade"`
	// MaxFileLength caps how much of a --file clip is transcribed.
	MaxFileLength   time.Duration `yaml:"max_file_length"`
}

type STTConfig struct {
	Engine    string `yaml:"engine"`
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`

	// whisper only
	Threads       int    `yaml:"threads"`
	Translate     bool   `yaml:"translate"`
	InitialPrompt string `yaml:"initial_prompt"`
	BeamSize      int    `yaml:"beam_size"`
}

type TTSConfig struct {
	Voice  string `yaml:"voice"`
	Rate   int    `yaml:"rate"`
	Volume int    `yaml:"volume"`
}

type ChatConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ProbeConfig struct {
	Address string        `yaml:"address"`
	Timeout time.Duration `yaml:"timeout"`
}

type IPCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Socket  string `yaml:"socket"`
}

type BusConfig struct {
	URL string `yaml:"url"`
}

// Site is a website reachable with "open <name>".
type Site struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Commands holds the lookup tables of the local command dispatcher.
// Keys are matched against lowercase transcripts.
type Commands struct {
	Sites     []Site            `yaml:"sites"`
	Folders   map[string]string `yaml:"folders"`
	Apps      map[string]string `yaml:"apps"`
	Processes map[string]string `yaml:"processes"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Assistant: AssistantConfig{
			Name:         "Jarvis",
			WakePhrase:   "hey jarvis",
			ListenWindow: 5 * time.Second,
		},
		Audio: AudioConfig{
			SampleRate:      16000,
			FramesPerBuffer: 8000,
			DuckFactor:      0.3,
			DuckMinVolume:   10,
			DuckFade:        200 * time.Millisecond,
			MaxFileLength:   30 * time.Second,
		},
		STT: STTConfig{
			Engine:    EngineVosk,
			ModelPath: "vosk-model-small-en-us-0.15",
			Language:  "en",
		},
		TTS: TTSConfig{
			Voice:  "en",
			Rate:   170,
			Volume: 100,
		},
		Chat: ChatConfig{
			Model:   "gpt-3.5-turbo",
			Timeout: 30 * time.Second,
		},
		Probe: ProbeConfig{
			Address: "8.8.8.8:53",
			Timeout: 3 * time.Second,
		},
		IPC: IPCConfig{
			Enabled: true,
			Socket:  "/tmp/jarvis.sock",
		},
		Commands: defaultCommands(home),
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any.
// Environment variables referenced as ${VAR} are expanded before parsing.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Bus.URL == "" {
		cfg.Bus.URL = os.Getenv("JARVIS_BUS_URL")
	}

	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	c.Assistant.WakePhrase = strings.ToLower(strings.TrimSpace(c.Assistant.WakePhrase))
	c.STT.Engine = strings.ToLower(strings.TrimSpace(c.STT.Engine))

	for i := range c.Commands.Sites {
		s := &c.Commands.Sites[i]
		s.Name = strings.ToLower(strings.TrimSpace(s.Name))
		if s.Title == "" {
			s.Title = s.Name
		}
	}
	c.Commands.Folders = lowerKeys(c.Commands.Folders)
	c.Commands.Apps = lowerKeys(c.Commands.Apps)
	c.Commands.Processes = lowerKeys(c.Commands.Processes)
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// Validate reports the failures that must stop the process at startup.
func (c *Config) Validate() error {
	if c.Chat.APIKey == "" {
		return ErrNoAPIKey
	}

	switch c.STT.Engine {
	case EngineVosk, EngineWhisper:
	default:
		return fmt.Errorf("unknown stt engine %q", c.STT.Engine)
	}

	if c.STT.ModelPath == "" {
		return ErrNoModel
	}
	if _, err := os.Stat(c.STT.ModelPath); err != nil {
		return fmt.Errorf("%w: %s", ErrNoModel, c.STT.ModelPath)
	}

	if c.Assistant.ListenWindow <= 0 {
		return fmt.Errorf("listen window must be positive, got %s", c.Assistant.ListenWindow)
	}

	// An empty name would turn the site rule into a bare "open " match.
	for i, site := range c.Commands.Sites {
		if strings.TrimSpace(site.Name) == "" || strings.TrimSpace(site.URL) == "" {
			return fmt.Errorf("%w: sites[%d]", ErrBadSite, i)
		}
	}

	return nil
}
