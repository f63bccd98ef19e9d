package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/jinzhu/copier"
	"github.com/spf13/viper"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// Service is the dependency-injected configuration contract every other
// component is built against. There is no package-level global: a command
// dispatcher constructs exactly one Service and passes it to the components
// it wires up; tests construct a Service of their own (NewStatic) and never
// touch the process environment.
type Service interface {
	// GetConfig returns an immutable, independently-mutable copy of the
	// fully resolved configuration. Safe to call from many goroutines.
	GetConfig() Config
	// Reload re-runs the layering pipeline (file + env, CLI overrides are
	// preserved) and atomically swaps the resolved value.
	Reload() error
	// ConfigHash returns a stable digest of the fully-resolved value, used
	// by pkg/matchcache to invalidate on configuration drift.
	ConfigHash() string
}

// Overrides are the explicit CLI-supplied values for the current invocation
// — the highest-priority layer in spec.md §4.1.
type Overrides map[string]interface{}

// DefaultService implements Service by layering compiled defaults, an
// optional TOML file, SUBX_-prefixed (plus a few legacy-named) environment
// variables, and per-invocation overrides on top of each other with viper.
// Each DefaultService owns a private *viper.Viper instance; none of this
// state is ever shared through a package-level variable.
type DefaultService struct {
	v         *viper.Viper
	overrides Overrides
	resolved  Config
}

var legacyEnvAliases = map[string]string{
	"OPENAI_API_KEY":        "ai.api_key",
	"OPENAI_BASE_URL":       "ai.base_url",
	"AZURE_OPENAI_API_KEY":  "ai.api_key",
	"AZURE_OPENAI_ENDPOINT": "ai.base_url",
	"AZURE_OPENAI_VERSION":  "ai.api_version",
}

// Load builds a Service from scratch: compiled defaults, then the TOML file
// (explicit path, or SUBX_CONFIG_PATH, or the OS user-config directory; a
// missing file at the default location is not an error), then environment,
// then overrides. A malformed file is a fatal KindConfigInvalid error.
func Load(explicitPath string, overrides Overrides) (*DefaultService, error) {
	v := viper.New()
	v.SetConfigType("toml")

	applyDefaults(v.SetDefault)

	path := resolveConfigPath(explicitPath)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, subxerr.Wrap(subxerr.KindConfigInvalid, "malformed config file "+path, err)
				}
			}
		}
	}

	v.SetEnvPrefix("SUBX")
	v.AutomaticEnv()
	for env, dst := range legacyEnvAliases {
		_ = v.BindEnv(dst, env)
	}

	svc := &DefaultService{v: v, overrides: overrides}
	if err := svc.resolve(); err != nil {
		return nil, err
	}
	return svc, nil
}

func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("SUBX_CONFIG_PATH"); p != "" {
		return p
	}
	p, err := xdg.ConfigFile(filepath.Join("subx", "config.toml"))
	if err != nil {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return p // non-existent default path is not an error; viper.ReadInConfig will just no-op
	}
	return p
}

func (s *DefaultService) resolve() error {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return subxerr.Wrap(subxerr.KindConfigInvalid, "failed to decode configuration", err)
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = schemaVersion
	}
	for path, val := range s.overrides {
		applyOverride(&cfg, path, val)
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	s.resolved = cfg
	return nil
}

// GetConfig returns a deep, independent copy so callers can never mutate
// shared state — copier.Copy (rather than a manual field-by-field clone)
// is what the teacher reaches for whenever it needs to hand out a value
// callers must not alias.
func (s *DefaultService) GetConfig() Config {
	var out Config
	if err := copier.Copy(&out, &s.resolved); err != nil {
		// copier only fails on unsupported reflect kinds; Config has none,
		// so this is unreachable in practice. Fall back to the direct
		// value rather than panicking.
		return s.resolved
	}
	return out
}

func (s *DefaultService) Reload() error {
	if err := s.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return subxerr.Wrap(subxerr.KindConfigInvalid, "malformed config file", err)
		}
	}
	return s.resolve()
}

func (s *DefaultService) ConfigHash() string {
	return configHash(s.resolved)
}

func configHash(c Config) string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// StaticService is an in-memory Service implementation for tests: it never
// reads a file or the environment, matching the "construct an in-memory
// configuration directly" contract spec.md §9 requires of test doubles.
type StaticService struct {
	cfg Config
}

// NewStatic wraps a fully-formed Config for injection into tests.
func NewStatic(cfg Config) *StaticService {
	return &StaticService{cfg: cfg}
}

func (s *StaticService) GetConfig() Config {
	var out Config
	if err := copier.Copy(&out, &s.cfg); err != nil {
		return s.cfg
	}
	return out
}

func (s *StaticService) Reload() error       { return nil }
func (s *StaticService) ConfigHash() string  { return configHash(s.cfg) }

// Default returns the compiled defaults as a plain Config, useful for tests
// that want to start from a known-good baseline and tweak a few fields.
func Default() Config {
	v := viper.New()
	applyDefaults(v.SetDefault)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = schemaVersion
	}
	return cfg
}

func applyOverride(cfg *Config, path string, val interface{}) {
	// A small, explicit set of override paths covers every CLI flag the
	// dispatcher exposes (spec.md §6); unknown paths are ignored rather
	// than reflected into the struct, keeping this boundary narrow and
	// panic-free.
	switch path {
	case "ai.provider":
		if s, ok := val.(string); ok {
			cfg.AI.Provider = AIProvider(s)
		}
	case "ai.model":
		if s, ok := val.(string); ok {
			cfg.AI.Model = s
		}
	case "formats.default_output":
		if s, ok := val.(string); ok {
			cfg.Formats.DefaultOutput = SubtitleFormat(s)
		}
	case "formats.preserve_styling":
		if b, ok := val.(bool); ok {
			cfg.Formats.PreserveStyling = b
		}
	case "formats.default_encoding":
		if s, ok := val.(string); ok {
			cfg.Formats.DefaultEncoding = s
		}
	case "sync.max_offset_seconds":
		if f, ok := toFloat(val); ok {
			cfg.Sync.MaxOffsetSeconds = float32(f)
		}
	case "sync.vad.sensitivity":
		if f, ok := toFloat(val); ok {
			cfg.Sync.Vad.Sensitivity = f
		}
	case "sync.vad.chunk_size":
		if i, ok := toInt(val); ok {
			cfg.Sync.Vad.ChunkSize = i
		}
	case "general.backup_enabled":
		if b, ok := val.(bool); ok {
			cfg.General.BackupEnabled = b
		}
	case "general.max_concurrent_jobs":
		if i, ok := toInt(val); ok {
			cfg.General.MaxConcurrentJobs = i
		}
	default:
		// unknown override path: ignored by design (forward compatibility)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

var _ Service = (*DefaultService)(nil)
var _ Service = (*StaticService)(nil)

func init() {
	// Fail loudly and early if the compiled defaults themselves would not
	// validate — this is a programmer error, not a user-facing one.
	if err := Validate(Default()); err != nil {
		panic(fmt.Sprintf("subx: compiled configuration defaults are invalid: %v", err))
	}
}
