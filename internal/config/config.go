// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/pnuchat/internal/logging"
	"github.com/jeranaias/pnuchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete pnuchat configuration.
type Config struct {
	Answer   AnswerConfig   `toml:"answer" yaml:"answer"`
	Dispatch DispatchConfig `toml:"dispatch" yaml:"dispatch"`
	UI       UIConfig       `toml:"ui" yaml:"ui"`
	Log      LogConfig      `toml:"log" yaml:"log"`
	Stub     StubConfig     `toml:"stub" yaml:"stub"`
}

// AnswerConfig configures the answering service client.
type AnswerConfig struct {
	// URL is the full endpoint, e.g. http://localhost:8000/chat
	URL string `toml:"url" yaml:"url"`
	// Timeout bounds a single request. 0 waits indefinitely.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
	// FailureText is the assistant turn shown when a request fails.
	FailureText string `toml:"failure_text" yaml:"failure_text"`
	// EmptyIsFailure treats a 2xx response with an empty answer as a decode failure.
	EmptyIsFailure bool `toml:"empty_is_failure" yaml:"empty_is_failure"`
}

// DispatchConfig configures the turn dispatcher.
type DispatchConfig struct {
	// BusyPolicy is "reject" or "queue".
	BusyPolicy string `toml:"busy_policy" yaml:"busy_policy"`
}

// UIConfig contains terminal presentation settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme       string `toml:"theme" yaml:"theme"`
	Title       string `toml:"title" yaml:"title"`
	Placeholder string `toml:"placeholder" yaml:"placeholder"`
	LoadingText string `toml:"loading_text" yaml:"loading_text"`
	// WordWrap is the markdown wrap width for line-mode output.
	WordWrap int `toml:"word_wrap" yaml:"word_wrap"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	// File defaults to ~/.pnuchat/pnuchat.log
	File string `toml:"file" yaml:"file"`
}

// StubConfig configures `pnuchat stub`.
type StubConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	// Mode is one of echo, canned, fail, malformed.
	Mode  string   `toml:"mode" yaml:"mode"`
	Delay Duration `toml:"delay" yaml:"delay"`
	// CannedAnswer is returned in canned mode.
	CannedAnswer string `toml:"canned_answer" yaml:"canned_answer"`
	// RateLimit caps /chat requests per second, answering 429 beyond it. 0 disables.
	RateLimit float64 `toml:"rate_limit" yaml:"rate_limit"`
}

// =============================================================================
// DURATION
// =============================================================================

// Duration is a time.Duration written as "30s" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler (used by toml).
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := parseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML accepts "30s" or a bare number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML writes the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// parseDuration accepts Go duration syntax or a bare integer of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default failure and UI strings.
const (
	DefaultURL          = "http://localhost:8000/chat"
	DefaultFailureText  = "서버 연결 실패"
	DefaultTitle        = "PNU AI Assistant"
	DefaultPlaceholder  = "질문을 입력하세요..."
	DefaultLoadingText  = "답변 생성 중..."
	DefaultCannedAnswer = "학습된 데이터가 없습니다. ./data 폴더에 파일을 넣고 재시작해보세요."
)

// Busy policies.
const (
	PolicyReject = "reject"
	PolicyQueue  = "queue"
)

// Stub modes.
const (
	StubEcho      = "echo"
	StubCanned    = "canned"
	StubFail      = "fail"
	StubMalformed = "malformed"
)

// Default returns a configuration with all built-in defaults.
func Default() *Config {
	return &Config{
		Answer: AnswerConfig{
			URL:            DefaultURL,
			FailureText:    DefaultFailureText,
			EmptyIsFailure: true,
		},
		Dispatch: DispatchConfig{
			BusyPolicy: PolicyReject,
		},
		UI: UIConfig{
			Theme:       "auto",
			Title:       DefaultTitle,
			Placeholder: DefaultPlaceholder,
			LoadingText: DefaultLoadingText,
			WordWrap:    80,
		},
		Log: LogConfig{
			Level: "info",
		},
		Stub: StubConfig{
			Addr:         "127.0.0.1:8000",
			Mode:         StubEcho,
			CannedAnswer: DefaultCannedAnswer,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the pnuchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".pnuchat"), nil
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return inConfigDir("config.toml") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return inConfigDir("config.yaml") }

// HistoryPath returns the line-editor history file used by `pnuchat chat`.
func HistoryPath() (string, error) { return inConfigDir("history") }

// LogPath returns the configured log file, or the default under ConfigDir.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return inConfigDir("pnuchat.log")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file locations.
// Tries TOML first, then YAML, and falls back to defaults.
// Environment overrides are applied before validation.
func Load() (*Config, error) {
	if path := Locate(); path != "" {
		return LoadFromPath(path)
	}

	cfg := Default()
	return finish(cfg)
}

// Locate returns the config file Load reads, or "" when there is none.
func Locate() string {
	for _, locate := range []func() (string, error){ConfigPathTOML, ConfigPathYAML} {
		path, err := locate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return path
		}
	}
	return ""
}

// LoadFromPath loads configuration from a specific file. The decoder is
// chosen by extension: .yaml/.yml use YAML, anything else TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load config from %s", path)
	}
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrap(err, "decode TOML")
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read YAML")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "decode YAML")
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.EncodeTOML()
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// EncodeTOML renders the configuration as a commented TOML document.
func (c *Config) EncodeTOML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# pnuchat configuration file\n")
	buf.WriteString("# Environment variables PNUCHAT_* override these values.\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return buf.Bytes(), nil
}

// String returns the TOML form, for `pnuchat config show` and debugging.
func (c *Config) String() string {
	data, err := c.EncodeTOML()
	if err != nil {
		return err.Error()
	}
	return string(data)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors listing every
// problem found, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Answer
	// ==========================================================================

	if u, err := url.Parse(c.Answer.URL); err != nil || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "answer.url",
			Message: fmt.Sprintf("invalid URL '%s'", c.Answer.URL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "answer.url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	}
	if c.Answer.Timeout.Duration < 0 {
		errs = append(errs, ValidationError{
			Field:   "answer.timeout",
			Message: "must not be negative",
		})
	}

	// ==========================================================================
	// Dispatch
	// ==========================================================================

	switch c.Dispatch.BusyPolicy {
	case PolicyReject, PolicyQueue:
	default:
		errs = append(errs, ValidationError{
			Field:   "dispatch.busy_policy",
			Message: fmt.Sprintf("invalid policy '%s', must be one of: reject, queue", c.Dispatch.BusyPolicy),
		})
	}

	// ==========================================================================
	// UI / Log / Stub
	// ==========================================================================

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: %s", c.Log.Level, strings.Join(logging.Levels, ", ")),
		})
	}

	switch c.Stub.Mode {
	case StubEcho, StubCanned, StubFail, StubMalformed:
	default:
		errs = append(errs, ValidationError{
			Field:   "stub.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: echo, canned, fail, malformed", c.Stub.Mode),
		})
	}
	if c.Stub.Delay.Duration < 0 {
		errs = append(errs, ValidationError{
			Field:   "stub.delay",
			Message: "must not be negative",
		})
	}
	if c.Stub.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "stub.rate_limit",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values with defaults and normalizes case.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Answer.URL == "" {
		c.Answer.URL = d.Answer.URL
	}
	if c.Answer.FailureText == "" {
		c.Answer.FailureText = d.Answer.FailureText
	}

	c.Dispatch.BusyPolicy = strings.ToLower(strings.TrimSpace(c.Dispatch.BusyPolicy))
	if c.Dispatch.BusyPolicy == "" {
		c.Dispatch.BusyPolicy = d.Dispatch.BusyPolicy
	}

	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.Title == "" {
		c.UI.Title = d.UI.Title
	}
	if c.UI.Placeholder == "" {
		c.UI.Placeholder = d.UI.Placeholder
	}
	if c.UI.LoadingText == "" {
		c.UI.LoadingText = d.UI.LoadingText
	}
	if c.UI.WordWrap <= 0 {
		c.UI.WordWrap = d.UI.WordWrap
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}

	c.Stub.Mode = strings.ToLower(strings.TrimSpace(c.Stub.Mode))
	if c.Stub.Mode == "" {
		c.Stub.Mode = d.Stub.Mode
	}
	if c.Stub.Addr == "" {
		c.Stub.Addr = d.Stub.Addr
	}
	if c.Stub.CannedAnswer == "" {
		c.Stub.CannedAnswer = d.Stub.CannedAnswer
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - PNUCHAT_URL: overrides answer.url
//   - PNUCHAT_TIMEOUT: overrides answer.timeout ("30s" or seconds)
//   - PNUCHAT_BUSY_POLICY: overrides dispatch.busy_policy
//   - PNUCHAT_LOG_LEVEL: overrides log.level
//   - PNUCHAT_LOG_FILE: overrides log.file
//   - PNUCHAT_THEME: overrides ui.theme
//
// An unparseable PNUCHAT_TIMEOUT becomes -1s so Validate reports it.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PNUCHAT_URL"); v != "" {
		c.Answer.URL = v
	}
	if v := os.Getenv("PNUCHAT_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			d = -time.Second
		}
		c.Answer.Timeout = Duration{d}
	}
	if v := os.Getenv("PNUCHAT_BUSY_POLICY"); v != "" {
		c.Dispatch.BusyPolicy = v
	}
	if v := os.Getenv("PNUCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PNUCHAT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("PNUCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access and falls back to defaults when the
// config file is unusable. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
