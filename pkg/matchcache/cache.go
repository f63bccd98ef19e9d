// Package matchcache persists the outcome of a matching pass keyed by a
// directory fingerprint, config hash, and oracle model id, so a repeated
// dry run (or real run) over an unchanged directory never re-contacts the
// pairing oracle. Grounded on the teacher's resumption_service.go (same
// "durable record gates re-work" shape), generalized from a single resume
// marker to a structured cache record.
package matchcache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"

	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/subxerr"
)

// Operation is one proposed rename/copy/move, persisted alongside the
// confidence and reasoning the oracle returned for it.
type Operation struct {
	VideoID         string   `json:"video_id"`
	SubtitleID      string   `json:"subtitle_id"`
	ProposedNewName string   `json:"proposed_new_name"`
	Confidence      float64  `json:"confidence"`
	Reasoning       []string `json:"reasoning"`
}

// Record is the on-disk cache document for one matching pass.
type Record struct {
	CacheVersion   string                `json:"cache_version"`
	DirectoryRoot  string                `json:"directory_root"`
	Recursive      bool                  `json:"recursive_flag"`
	Fingerprint    discover.Fingerprint  `json:"fingerprint"`
	Operations     []Operation           `json:"operations"`
	CreatedAtUnix  int64                 `json:"created_at"`
	OracleModelID  string                `json:"oracle_model_id"`
	ConfigHash     string                `json:"config_hash"`
}

// Store reads and writes the single on-disk cache file. It is not
// goroutine-safe against concurrent writers across processes; spec.md §5
// guarantees only the matching pass ever writes it, and only after every
// pair operation is resolved.
type Store struct {
	path string
	log  zerolog.Logger
}

const cacheSchemaVersion = "1.0.0"

// New builds a Store rooted at <configDir>/match_cache.json.
func New(configDir string, log zerolog.Logger) *Store {
	return &Store{path: filepath.Join(configDir, "match_cache.json"), log: log.With().Str("component", "matchcache").Logger()}
}

// Lookup returns the stored record if present and compatible (same schema
// major version), or (nil, false) on a miss. A corrupt file is logged and
// treated as a miss, never as an error — spec.md §4.4 / §4.12.
func (s *Store) Lookup(root string, recursive bool, fp discover.Fingerprint, modelID, configHash string) (*Record, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn().Err(err).Msg("cache file is corrupt, treating as miss")
		return nil, false
	}
	if !compatibleSchema(rec.CacheVersion) {
		s.log.Warn().Str("cacheVersion", rec.CacheVersion).Msg("cache file schema is incompatible, treating as miss")
		return nil, false
	}
	if rec.DirectoryRoot != root || rec.Recursive != recursive || rec.OracleModelID != modelID || rec.ConfigHash != configHash {
		return nil, false
	}
	if !rec.Fingerprint.Equal(fp) {
		return nil, false
	}
	return &rec, true
}

func compatibleSchema(v string) bool {
	if v == "" {
		return false
	}
	stored, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	current, _ := semver.NewVersion(cacheSchemaVersion)
	return stored.Major() == current.Major()
}

// Write persists a fresh record, write-temp-then-rename so a crash never
// leaves a half-written cache file. Write failures are logged and returned
// to the caller, who per spec.md §4.4 must not let them abort the command.
func (s *Store) Write(rec Record, createdAtUnix int64) error {
	rec.CacheVersion = cacheSchemaVersion
	rec.CreatedAtUnix = createdAtUnix

	raw, err := json.Marshal(rec)
	if err != nil {
		return subxerr.Wrap(subxerr.KindCacheCorrupt, "failed to encode cache record", err)
	}
	formatted := pretty.Pretty(raw)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn().Err(err).Msg("failed to create cache directory")
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to create cache directory", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, formatted, 0o644); err != nil {
		s.log.Warn().Err(err).Msg("failed to write cache file")
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to write cache file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Warn().Err(err).Msg("failed to finalize cache file")
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to finalize cache file", err)
	}
	return nil
}

// Clear removes the cache file; a missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to remove cache file", err)
	}
	return nil
}
