// Package settings loads the CLI's user preferences. The engine packages never read
// settings; callers use them to decide which engine operations to run.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/githubnext/yamlassist/pkg/constants"
	"github.com/githubnext/yamlassist/pkg/converter"
	"github.com/joho/godotenv"
)

// Settings are the user preferences
type Settings struct {
	EnableAISuggestions bool     `yaml:"enable-ai-suggestions" json:"enableAISuggestions"`
	AutoValidate        bool     `yaml:"auto-validate" json:"autoValidate"`
	FormatOnPaste       bool     `yaml:"format-on-paste" json:"formatOnPaste"`
	Indent              int      `yaml:"indent" json:"indent" validate:"min=0,max=10"`
	SortKeys            bool     `yaml:"sort-keys" json:"sortKeys"`
	FlowLevel           int      `yaml:"flow-level" json:"flowLevel" validate:"min=-1"`
	AdvisoryTimeout     string   `yaml:"advisory-timeout" json:"advisoryTimeout" validate:"required"`
	WatchDebounce       string   `yaml:"watch-debounce" json:"watchDebounce" validate:"required"`
	CacheSize           int      `yaml:"cache-size" json:"cacheSize" validate:"min=0,max=10000"`
	AllowedHosts        []string `yaml:"allowed-hosts" json:"allowedHosts" validate:"dive,hostname_rfc1123"`
}

// Default returns the settings used when nothing is configured
func Default() *Settings {
	return &Settings{
		EnableAISuggestions: true,
		AutoValidate:        true,
		FormatOnPaste:       false,
		Indent:              2,
		FlowLevel:           -1,
		AdvisoryTimeout:     "5s",
		WatchDebounce:       "500ms",
	}
}

// Load builds settings for dir: defaults, then the settings file, then .env entries,
// then the process environment. The result is validated.
func Load(dir string) (*Settings, error) {
	s := Default()

	if err := s.loadFile(filepath.Join(dir, constants.SettingsFileName)); err != nil {
		return nil, err
	}

	fileEnv, err := godotenv.Read(filepath.Join(dir, constants.EnvFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", constants.EnvFileName, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := s.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, s, yaml.DisallowUnknownField()); err != nil {
		return fmt.Errorf("invalid settings file %s: %s", filepath.Base(path), yaml.FormatError(err, false, false))
	}
	return nil
}

// envOverride binds one environment variable to a settings field
type envOverride struct {
	name  string
	apply func(s *Settings, value string) error
}

var envOverrides = []envOverride{
	{"ENABLE_AI_SUGGESTIONS", boolField(func(s *Settings) *bool { return &s.EnableAISuggestions })},
	{"AUTO_VALIDATE", boolField(func(s *Settings) *bool { return &s.AutoValidate })},
	{"FORMAT_ON_PASTE", boolField(func(s *Settings) *bool { return &s.FormatOnPaste })},
	{"INDENT", intField(func(s *Settings) *int { return &s.Indent })},
	{"SORT_KEYS", boolField(func(s *Settings) *bool { return &s.SortKeys })},
	{"FLOW_LEVEL", intField(func(s *Settings) *int { return &s.FlowLevel })},
	{"ADVISORY_TIMEOUT", stringField(func(s *Settings) *string { return &s.AdvisoryTimeout })},
	{"WATCH_DEBOUNCE", stringField(func(s *Settings) *string { return &s.WatchDebounce })},
	{"CACHE_SIZE", intField(func(s *Settings) *int { return &s.CacheSize })},
	{"ALLOWED_HOSTS", func(s *Settings, value string) error {
		s.AllowedHosts = nil
		for _, host := range strings.Split(value, ",") {
			if host = strings.TrimSpace(host); host != "" {
				s.AllowedHosts = append(s.AllowedHosts, host)
			}
		}
		return nil
	}},
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		key := constants.EnvPrefix + o.name
		value, ok := lookup(key)
		if !ok {
			continue
		}
		if err := o.apply(s, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func boolField(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

func intField(field func(*Settings) *int) func(*Settings, string) error {
	return func(s *Settings, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(s) = n
		return nil
	}
}

func stringField(field func(*Settings) *string) func(*Settings, string) error {
	return func(s *Settings, value string) error {
		*field(s) = value
		return nil
	}
}

// Validate checks field ranges and duration syntax
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	for name, value := range map[string]string{"advisory-timeout": s.AdvisoryTimeout, "watch-debounce": s.WatchDebounce} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid settings: %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid settings: %s must be positive, got %s", name, value)
		}
	}
	return nil
}

// AdvisoryTimeoutDuration returns the advisory timeout; call Validate first
func (s *Settings) AdvisoryTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.AdvisoryTimeout)
	return d
}

// WatchDebounceDuration returns the watch debounce window; call Validate first
func (s *Settings) WatchDebounceDuration() time.Duration {
	d, _ := time.ParseDuration(s.WatchDebounce)
	return d
}

// ConverterOptions returns the converter options these settings describe
func (s *Settings) ConverterOptions() converter.Options {
	return converter.Options{
		Indent:    s.Indent,
		FlowLevel: s.FlowLevel,
		SortKeys:  s.SortKeys,
	}
}
