package ckpe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-ini/ini"

	"previsbine/internal/services"
)

// Settings is the variant-independent view of the Creation Kit extender
// configuration.
type Settings struct {
	// File is the configuration file the settings were read from.
	File string
	// LogSetting is the raw log redirection value.
	LogSetting string
	// LogFile is the resolved path of the Creation Kit log. Filled in by
	// verification once the game root is known.
	LogFile            string
	HandleLimitEnabled bool
	HandleLimitFound   bool
}

// Reader parses one configuration file variant.
type Reader interface {
	File() string
	Parse(data []byte) (Settings, error)
}

type keyedReader struct {
	file      string
	logKey    string
	handleKey string
}

var (
	// PlatformExtended is the current extender configuration file.
	PlatformExtended Reader = keyedReader{
		file:      "CreationKitPlatformExtended.ini",
		logKey:    "sOutputFile",
		handleKey: "bBSPointerHandleExtremly",
	}
	// Legacy is the configuration used by older extender releases.
	Legacy Reader = keyedReader{
		file:      "fallout4_test.ini",
		logKey:    "OutputFile",
		handleKey: "BSHandleRefObjectPatch",
	}
)

// Readers lists the supported variants in probe priority order.
func Readers() []Reader {
	return []Reader{PlatformExtended, Legacy}
}

func (r keyedReader) File() string { return r.file }

func (r keyedReader) Parse(data []byte) (Settings, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:             true,
		Loose:                   true,
		SkipUnrecognizableLines: true,
		AllowBooleanKeys:        true,
	}, data)
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", r.file, err)
	}

	settings := Settings{File: r.file}
	if value, ok := lookup(cfg, r.logKey); ok {
		settings.LogSetting = value
	}
	if value, ok := lookup(cfg, r.handleKey); ok {
		settings.HandleLimitFound = true
		settings.HandleLimitEnabled = parseSwitch(value)
	}
	return settings, nil
}

// Detect returns the first variant whose file exists in the game root.
func Detect(fsys billy.Basic) (Reader, error) {
	for _, reader := range Readers() {
		if _, err := fsys.Stat(reader.File()); err == nil {
			return reader, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", reader.File(), err)
		}
	}
	return nil, services.Wrap(services.ErrConfigurationMissing, "", "creation kit extender", "no settings file found", nil)
}

// Load detects the variant and parses it.
func Load(fsys billy.Basic) (Settings, error) {
	reader, err := Detect(fsys)
	if err != nil {
		return Settings{}, err
	}
	f, err := fsys.Open(reader.File())
	if err != nil {
		return Settings{}, fmt.Errorf("open %s: %w", reader.File(), err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Settings{}, fmt.Errorf("read %s: %w", reader.File(), err)
	}
	return reader.Parse(data)
}

func lookup(cfg *ini.File, key string) (string, bool) {
	for _, section := range cfg.Sections() {
		if section.HasKey(key) {
			return strings.TrimSpace(section.Key(key).String()), true
		}
	}
	return "", false
}

func parseSwitch(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
