package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tacc/internal/driver"
	"tacc/internal/interp"
	"tacc/internal/project"
	"tacc/internal/regalloc"
)

// errDiagnostics is returned by commands whose input produced errors; the
// diagnostics themselves are already on stderr.
var errDiagnostics = errors.New("compilation failed")

// settings is the manifest merged with the command line.
type settings struct {
	config   project.Config
	manifest *project.Manifest

	format         string // pretty|json
	colorOut       bool
	colorErr       bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

// loadSettings reads tacc.toml above target (or the working directory) and
// applies explicitly set flags on top of it. formats widens the accepted
// --format values beyond pretty and json.
func loadSettings(cmd *cobra.Command, target string, formats ...string) (*settings, error) {
	if target == "" {
		target = "."
	}
	manifest, found, err := project.Load(target)
	if err != nil {
		return nil, err
	}
	s := &settings{config: project.DefaultConfig()}
	if found {
		s.manifest = manifest
		s.config = manifest.Config
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		if s.config.Output.Format, err = flags.GetString("format"); err != nil {
			return nil, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Changed("color") {
		if s.config.Output.Color, err = flags.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Lookup("registers") != nil && flags.Changed("registers") {
		if s.config.Alloc.Registers, err = flags.GetInt("registers"); err != nil {
			return nil, fmt.Errorf("failed to get registers flag: %w", err)
		}
		if s.config.Alloc.Registers <= 0 {
			return nil, fmt.Errorf("--registers must be positive, got %d", s.config.Alloc.Registers)
		}
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		if s.config.Build.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Lookup("no-cache") != nil {
		noCache, flagErr := flags.GetBool("no-cache")
		if flagErr != nil {
			return nil, fmt.Errorf("failed to get no-cache flag: %w", flagErr)
		}
		if noCache {
			s.config.Build.Cache = false
		}
	}

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	s.format = strings.ToLower(strings.TrimSpace(s.config.Output.Format))
	formats = append([]string{"pretty", "json"}, formats...)
	if !slices.Contains(formats, s.format) {
		return nil, fmt.Errorf("unknown format: %s (expected %s)", s.format, strings.Join(formats, "|"))
	}
	if s.colorOut, err = resolveColor(s.config.Output.Color, os.Stdout); err != nil {
		return nil, err
	}
	s.colorErr, _ = resolveColor(s.config.Output.Color, os.Stderr)
	return s, nil
}

func resolveColor(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return isTerminal(f), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

func (s *settings) allocConfig() regalloc.Config {
	return regalloc.Config{Registers: s.config.Alloc.Registers, Prefix: s.config.Alloc.Prefix}
}

// driverOptions builds the per-file options; the cache is wired separately
// because only build uses it.
func (s *settings) driverOptions() driver.Options {
	return driver.Options{
		MaxDiagnostics: s.maxDiagnostics,
		Alloc:          s.allocConfig(),
		Timings:        s.timings,
		RunOptions:     interp.Options{MaxSteps: s.config.Run.MaxSteps},
	}
}

// openCache returns nil when caching is switched off.
func (s *settings) openCache() (*driver.DiskCache, error) {
	if !s.config.Build.Cache {
		return nil, nil
	}
	cache, err := driver.OpenDiskCache("tacc")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return cache, nil
}
