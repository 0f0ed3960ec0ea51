package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jscyril/juke/internal/audio"
	"github.com/jscyril/juke/internal/config"
	"github.com/jscyril/juke/internal/library"
	"github.com/jscyril/juke/internal/playlist"
	"github.com/jscyril/juke/internal/ui"
	"github.com/jscyril/juke/pkg/events"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type Params struct {
	Path    string `pos:"true" optional:"true" help:"Directory, M3U playlist or audio file to play." default:"."`
	Config  string `short:"c" optional:"true" help:"Config file (default: $JUKE_CONFIG or the XDG config directory)."`
	LogFile string `optional:"true" help:"Log file (default: juke.log next to the config file)."`
}

func main() {
	// .env may set JUKE_CONFIG or JUKE_DEBUG; a missing file is fine
	_ = godotenv.Load()

	boa.CmdT[Params]{
		Use:     "juke [path]",
		Short:   "Terminal audio player",
		Long:    "Play a directory of audio files or an M3U playlist with a spectrum visualizer. Supports mp3, flac, ogg and wav.",
		Version: appVersion(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}.Run()
}

func run(params *Params) error {
	// Load configuration
	configPath := params.Config
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	// the config is always usable; errors name the entries that fell back
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// The terminal belongs to the UI, so logs go to a file
	logPath := params.LogFile
	if logPath == "" {
		logPath = cfg.LogFile
	}
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(configPath), "juke.log")
	}
	logFile, err := openLog(logPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := slog.Default()
	log.Info("starting juke", "version", appVersion(), "config", configPath, "path", params.Path)

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("juke needs an interactive terminal")
	}

	// Resolve the tracks to play; an interrupt cancels a long scan
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	lib := library.NewLibrary(
		library.NewScanner(runtime.NumCPU(), library.NewMetadataReader(audio.Probe), log),
		log,
	)
	tracks, err := lib.Load(ctx, params.Path)
	stop()
	if err != nil {
		log.Error("loading tracks", "path", params.Path, "error", err)
		return err
	}
	log.Info("library loaded", "tracks", len(tracks))

	// Open the audio device
	out, err := audio.NewSpeakerOutput(cfg.SampleRate, 4)
	if err != nil {
		return err
	}

	bus := events.NewEventBus()
	defer bus.Close()

	engine := audio.NewEngine(audio.NewFileDecoder(cfg.SampleRate), out, audio.Options{
		BufferBlocks: cfg.BufferBlocks,
		Volume:       cfg.DefaultVolume,
		Logger:       log,
		Bus:          bus,
	})
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn("closing audio device", "error", err)
		}
	}()

	queue := playlist.NewQueue()
	queue.Set(tracks)

	model := ui.NewModel(engine, queue, ui.Options{
		SeekStep:    time.Duration(cfg.SeekStep) * time.Second,
		Tick:        time.Duration(cfg.TickMillis) * time.Millisecond,
		QueuePath:   filepath.Join(filepath.Dir(configPath), "queue.m3u"),
		Bands:       cfg.VisualizerBands,
		KeyBindings: cfg.KeyBindings,
		Bus:         bus,
		Logger:      log,
	})

	if err := ui.Run(model); err != nil {
		log.Error("player stopped", "error", err)
		return err
	}
	log.Info("bye")
	return nil
}

// openLog installs a slog text handler writing to path as the default logger
func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if os.Getenv("JUKE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return f, nil
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-(no build info)"
	}

	version := bi.Main.Version
	if version == "" {
		version = "unknown-(no version)"
	}
	return version
}
