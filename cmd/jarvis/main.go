package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"jarvis/internal/assistant"
	"jarvis/internal/audio"
	"jarvis/internal/bus"
	"jarvis/internal/chat"
	"jarvis/internal/command"
	"jarvis/internal/config"
	"jarvis/internal/desktop"
	"jarvis/internal/ipc"
	"jarvis/internal/mixer"
	"jarvis/internal/netcheck"
	"jarvis/internal/notify"
	"jarvis/internal/proxy"
	"jarvis/internal/tts"
	"jarvis/pkg/audioconv"
	"jarvis/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	os.Exit(run())
}

func run() int {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configPath := cli.StringP("config", "c", "", "YAML config file")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for online mode")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	audioFile := cli.StringP("file", "f", "", "Transcribe and run a single audio file, then exit")
	textOnly := cli.BoolP("text", "t", false, "Typed commands only, no microphone")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevelMap[*logLevel],
		TimeFormat: time.Kitchen,
	})))

	log.Info("Booting up")

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug("No env file loaded", "path", *envFile, "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid setup", "err", err)
		return 1
	}

	log.Debug("Loaded config", "engine", cfg.STT.Engine, "model", cfg.STT.ModelPath)

	dialer, err := proxy.NewDialer(*proxyAddr)
	if err != nil {
		log.Error("Failed to set up proxy", "proxy", *proxyAddr, "err", err)
		return 1
	}

	chatClient := chat.New(chat.Options{
		APIKey:     cfg.Chat.APIKey,
		Model:      cfg.Chat.Model,
		BaseURL:    cfg.Chat.BaseURL,
		HTTPClient: proxy.NewHTTPClient(dialer, cfg.Chat.Timeout),
	})
	probe := netcheck.NewProbe(cfg.Probe.Address, cfg.Probe.Timeout, dialer)

	var publisher assistant.Publisher
	if cfg.Bus.URL != "" {
		b, err := bus.Dial(cfg.Bus.URL, "jarvis")
		if err != nil {
			log.Warn("Bus unavailable, continuing without it", "url", cfg.Bus.URL, "err", err)
		} else {
			defer b.Close()
			publisher = b
		}
	}

	decoder, err := stt.New(stt.Config{
		Engine:     cfg.STT.Engine,
		ModelPath:  cfg.STT.ModelPath,
		SampleRate: cfg.Audio.SampleRate,
		Language:   cfg.STT.Language,
		Threads:    cfg.STT.Threads,
		Translate:  cfg.STT.Translate,
		Prompt:     cfg.STT.InitialPrompt,
		BeamSize:   cfg.STT.BeamSize,
	})
	if err != nil {
		log.Error("Failed to load speech model", "err", err)
		return 1
	}
	defer decoder.Close()

	log.Debug("Loaded speech model")

	voice := tts.NewVoice(cfg.TTS.Voice, cfg.TTS.Rate, cfg.TTS.Volume)
	speaker := assistant.NewConsoleSpeaker(cfg.Assistant.Name, os.Stdout, voice, publisher)
	dispatcher := command.NewDispatcher(speaker, desktop.New(), cfg.Commands)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var listener assistant.Listener
	if !*textOnly && *audioFile == "" {
		rec := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer)
		if err := rec.Init(); err != nil {
			log.Error("Failed to init audio", "err", err)
			return 1
		}
		defer rec.Close()

		opt := assistant.MicOptions{
			Window:     cfg.Assistant.ListenWindow,
			Out:        os.Stdout,
			DuckFactor: cfg.Audio.DuckFactor,
			DuckFade:   cfg.Audio.DuckFade,
		}
		if cfg.Audio.Chime != "" {
			opt.Chime = notify.NewChime(cfg.Audio.Chime)
		}
		if cfg.Audio.Duck {
			opt.Ducker = mixer.NewDucker([]string{"jarvis", "eSpeak"}, cfg.Audio.DuckMinVolume)
		}
		listener = assistant.NewMicListener(rec, decoder, opt)

		log.Debug("Loaded recorder")
	}

	var inbox chan string
	if cfg.IPC.Enabled && *audioFile == "" {
		inbox = make(chan string, 8)
		ln, err := ipc.StartServer(cfg.IPC.Socket, func(msg ipc.ControlMessage) {
			switch msg.Cmd {
			case ipc.CmdRun:
				select {
				case inbox <- msg.Text:
				default:
					log.Warn("Control queue full, dropping command", "text", msg.Text)
				}
			case ipc.CmdPing:
				log.Debug("Ping")
			default:
				log.Warn("Unknown command", "cmd", msg.Cmd)
			}
		})
		if err != nil {
			log.Warn("Control socket disabled", "socket", cfg.IPC.Socket, "err", err)
		} else {
			defer ln.Close()
		}
	}

	a := assistant.New(listener, assistant.NewLinePrompter(os.Stdin, os.Stdout), dispatcher, probe, chatClient, speaker, assistant.Options{
		Name:       cfg.Assistant.Name,
		WakePhrase: cfg.Assistant.WakePhrase,
		Inbox:      inbox,
		Out:        os.Stdout,
		Publisher:  publisher,
	})

	log.Info("Boot up - successful")

	if *audioFile != "" {
		err := a.RespondToFile(ctx, decoder, *audioFile, audioconv.Options{
			SampleRate: cfg.Audio.SampleRate,
			MaxSamples: int(cfg.Audio.MaxFileLength.Seconds() * float64(cfg.Audio.SampleRate)),
		})
		if err != nil {
			log.Error("Failed to run audio file", "path", *audioFile, "err", err)
			return 1
		}
		return 0
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Assistant stopped", "err", err)
		return 1
	}
	return 0
}
