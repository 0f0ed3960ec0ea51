package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	playerrors "github.com/jscyril/juke/pkg/errors"
)

// Config holds application configuration
type Config struct {
	SeekStep        int         `json:"seek_step"` // seconds
	DefaultVolume   float64     `json:"default_volume"`
	SampleRate      int         `json:"sample_rate"`
	BufferBlocks    int         `json:"buffer_blocks"`
	TickMillis      int         `json:"tick_ms"`
	VisualizerBands int         `json:"visualizer_bands"`
	LogFile         string      `json:"log_file"`
	KeyBindings     KeyBindings `json:"key_bindings"`
}

// KeyBindings maps a command name to the keys that trigger it
type KeyBindings map[string]KeyBinding

// KeyBinding is one key or a list of keys. In JSON it is either a string or
// an array of strings.
type KeyBinding []string

func (k *KeyBinding) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" && single != " " {
			return errors.New("empty key")
		}
		*k = KeyBinding{NormalizeKey(single)}
		return nil
	}

	var multiple []string
	if err := json.Unmarshal(data, &multiple); err != nil {
		return fmt.Errorf("key binding must be a string or a list of strings")
	}
	if len(multiple) == 0 {
		return errors.New("empty key list")
	}
	out := make(KeyBinding, 0, len(multiple))
	for _, key := range multiple {
		if strings.TrimSpace(key) == "" && key != " " {
			return errors.New("empty key")
		}
		out = append(out, NormalizeKey(key))
	}
	*k = out
	return nil
}

func (k KeyBinding) MarshalJSON() ([]byte, error) {
	if len(k) == 1 {
		return json.Marshal(k[0])
	}
	return json.Marshal([]string(k))
}

// NormalizeKey brings a key name into the form the terminal reports:
// named keys such as "Shift+Right" are lowercased, single characters keep
// their case, and a literal space becomes "space".
func NormalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	key = strings.TrimSpace(key)
	if utf8.RuneCountInString(key) > 1 {
		return strings.ToLower(key)
	}
	return key
}

// Command names accepted in key_bindings
const (
	KeyPlayPause   = "play_pause"
	KeyNext        = "next"
	KeyPrev        = "prev"
	KeySeekForward = "seek_forward"
	KeySeekBack    = "seek_back"
	KeyShuffle     = "shuffle"
	KeyRepeat      = "repeat"
	KeyTrackList   = "track_list"
	KeySearch      = "search"
	KeyHelp        = "help"
	KeyQuit        = "quit"
	KeyUp          = "up"
	KeyDown        = "down"
	KeyConfirm     = "confirm"
	KeyBackspace   = "backspace"
	KeyBack        = "back"
	KeyVolumeUp    = "volume_up"
	KeyVolumeDown  = "volume_down"
	KeyStop        = "stop"
	KeySaveQueue   = "save_queue"
)

// DefaultKeyBindings returns the built-in key map
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		KeyPlayPause:   {"space"},
		KeyNext:        {"n", "right"},
		KeyPrev:        {"p", "left"},
		KeySeekForward: {"shift+right"},
		KeySeekBack:    {"shift+left"},
		KeyShuffle:     {"S"},
		KeyRepeat:      {"r"},
		KeyTrackList:   {"t"},
		KeySearch:      {"/"},
		KeyHelp:        {"?", "h", "f1"},
		KeyQuit:        {"q", "esc"},
		KeyUp:          {"up"},
		KeyDown:        {"down"},
		KeyConfirm:     {"enter"},
		KeyBackspace:   {"backspace"},
		KeyBack:        {"esc"},
		KeyVolumeUp:    {"+", "="},
		KeyVolumeDown:  {"-"},
		KeyStop:        {"s"},
		KeySaveQueue:   {"w"},
	}
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		SeekStep:        10,
		DefaultVolume:   0.8,
		SampleRate:      44100,
		BufferBlocks:    32,
		TickMillis:      33,
		VisualizerBands: 12,
		LogFile:         "",
		KeyBindings:     DefaultKeyBindings(),
	}
}

// LoadConfig reads configuration from file. Entries that are missing or
// invalid keep their defaults, and a file that cannot be read yields the
// defaults. The returned config is always usable; the error, when set,
// wraps ErrConfigParse.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, &playerrors.ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return config, &playerrors.ConfigError{Path: path, Err: err}
	}

	p := &parser{path: path, raw: raw}
	intField(p, "seek_step", &config.SeekStep, 1, 3600)
	floatField(p, "default_volume", &config.DefaultVolume, 0, 1)
	intField(p, "sample_rate", &config.SampleRate, 8000, 192000)
	intField(p, "buffer_blocks", &config.BufferBlocks, 2, 1024)
	intField(p, "tick_ms", &config.TickMillis, 10, 1000)
	intField(p, "visualizer_bands", &config.VisualizerBands, 1, 64)
	stringField(p, "log_file", &config.LogFile)
	p.keyBindings(config.KeyBindings)

	return config, errors.Join(p.errs...)
}

type parser struct {
	path string
	raw  map[string]json.RawMessage
	errs []error
}

func (p *parser) fail(field string, err error) {
	p.errs = append(p.errs, &playerrors.ConfigError{Path: p.path, Field: field, Err: err})
}

func decode[T any](p *parser, field string, valid func(T) error) (T, bool) {
	var v T
	data, ok := p.raw[field]
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		p.fail(field, err)
		return v, false
	}
	if err := valid(v); err != nil {
		p.fail(field, err)
		return v, false
	}
	return v, true
}

func intField(p *parser, field string, dst *int, lo, hi int) {
	v, ok := decode(p, field, func(v int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%d is outside [%d, %d]", v, lo, hi)
		}
		return nil
	})
	if ok {
		*dst = v
	}
}

func floatField(p *parser, field string, dst *float64, lo, hi float64) {
	v, ok := decode(p, field, func(v float64) error {
		if v < lo || v > hi {
			return fmt.Errorf("%g is outside [%g, %g]", v, lo, hi)
		}
		return nil
	})
	if ok {
		*dst = v
	}
}

func stringField(p *parser, field string, dst *string) {
	v, ok := decode(p, field, func(string) error { return nil })
	if ok {
		*dst = v
	}
}

// keyBindings overrides entries of dst one command at a time
func (p *parser) keyBindings(dst KeyBindings) {
	entries, ok := decode(p, "key_bindings", func(map[string]json.RawMessage) error { return nil })
	if !ok {
		return
	}
	for name, data := range entries {
		field := "key_bindings." + name
		if _, known := dst[name]; !known {
			p.fail(field, errors.New("unknown command"))
			continue
		}
		var binding KeyBinding
		if err := json.Unmarshal(data, &binding); err != nil {
			p.fail(field, err)
			continue
		}
		dst[name] = binding
	}
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		config := GetDefaultConfig()
		if err := SaveConfig(config, path); err != nil {
			return config, fmt.Errorf("failed to save default config: %w", err)
		}
		return config, nil
	}
	return LoadConfig(path)
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("JUKE_CONFIG"); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "juke", "config.json")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "juke", "config.json")
}
