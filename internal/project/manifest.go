package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

// Manifest is a decoded tacc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config holds every tacc.toml setting, already defaulted and checked.
type Config struct {
	Alloc  AllocConfig
	Output OutputConfig
	Build  BuildConfig
	Run    RunConfig
}

type AllocConfig struct {
	Registers int
	Prefix    string
}

type OutputConfig struct {
	Color  string // auto|on|off
	Format string // pretty|json
}

type BuildConfig struct {
	Jobs  int // 0 = GOMAXPROCS
	Cache bool
}

type RunConfig struct {
	MaxSteps int
}

// DefaultConfig is what an absent manifest (or an absent key) means.
func DefaultConfig() Config {
	return Config{
		Alloc:  AllocConfig{Registers: 8, Prefix: "r"},
		Output: OutputConfig{Color: "auto", Format: "pretty"},
		Build:  BuildConfig{Cache: true},
		Run:    RunConfig{MaxSteps: 1_000_000},
	}
}

// rawConfig mirrors the file; integers stay int64 until range-checked.
type rawConfig struct {
	Alloc struct {
		Registers int64  `toml:"registers"`
		Prefix    string `toml:"prefix"`
	} `toml:"alloc"`
	Output struct {
		Color  string `toml:"color"`
		Format string `toml:"format"`
	} `toml:"output"`
	Build struct {
		Jobs  int64 `toml:"jobs"`
		Cache bool  `toml:"cache"`
	} `toml:"build"`
	Run struct {
		MaxSteps int64 `toml:"max_steps"`
	} `toml:"run"`
}

// Load finds tacc.toml above start and decodes it. ok is false when
// there is no manifest; the caller then uses DefaultConfig.
func Load(start string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(start)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes one manifest file.
func LoadConfig(path string) (Config, error) {
	var raw rawConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg, err := fromRaw(&raw, meta)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes manifest text; used by tests and `tacc examples`.
func ParseConfig(data string) (Config, error) {
	var raw rawConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fromRaw(&raw, meta)
}

func fromRaw(raw *rawConfig, meta toml.MetaData) (Config, error) {
	cfg := DefaultConfig()

	if meta.IsDefined("alloc", "registers") {
		n, err := positive("[alloc].registers", raw.Alloc.Registers)
		if err != nil {
			return Config{}, err
		}
		cfg.Alloc.Registers = n
	}
	if meta.IsDefined("alloc", "prefix") {
		if strings.TrimSpace(raw.Alloc.Prefix) == "" {
			return Config{}, fmt.Errorf("[alloc].prefix must not be empty")
		}
		cfg.Alloc.Prefix = raw.Alloc.Prefix
	}

	if meta.IsDefined("output", "color") {
		switch raw.Output.Color {
		case "auto", "on", "off":
			cfg.Output.Color = raw.Output.Color
		default:
			return Config{}, fmt.Errorf("[output].color must be auto|on|off, got %q", raw.Output.Color)
		}
	}
	if meta.IsDefined("output", "format") {
		switch raw.Output.Format {
		case "pretty", "json":
			cfg.Output.Format = raw.Output.Format
		default:
			return Config{}, fmt.Errorf("[output].format must be pretty|json, got %q", raw.Output.Format)
		}
	}

	if meta.IsDefined("build", "jobs") {
		if raw.Build.Jobs != 0 {
			n, err := positive("[build].jobs", raw.Build.Jobs)
			if err != nil {
				return Config{}, err
			}
			cfg.Build.Jobs = n
		}
	}
	if meta.IsDefined("build", "cache") {
		cfg.Build.Cache = raw.Build.Cache
	}

	if meta.IsDefined("run", "max_steps") {
		n, err := positive("[run].max_steps", raw.Run.MaxSteps)
		if err != nil {
			return Config{}, err
		}
		cfg.Run.MaxSteps = n
	}
	return cfg, nil
}

func positive(key string, v int64) (int, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fmt.Errorf("%s out of range: %w", key, err)
	}
	return n, nil
}
