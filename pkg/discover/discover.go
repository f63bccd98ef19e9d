// Package discover walks input paths, classifies files by role, and assigns
// each a stable content identity — grounded on the teacher's directory
// walking in internal/core/path_service.go, generalized to SubX's three
// media roles instead of one.
package discover

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// Role classifies a discovered file.
type Role string

const (
	RoleVideo    Role = "video"
	RoleAudio    Role = "audio"
	RoleSubtitle Role = "subtitle"
	RoleOther    Role = "other"
)

// MediaFile describes one file observed during a scan.
type MediaFile struct {
	AbsPath      string
	Name         string
	Ext          string
	RelPath      string
	Role         Role
	Size         int64
	ModifiedUnix int64
	ID           string
}

// ExtensionSets drives classification; it is normally sourced from
// Config.Discovery (pkg/config) but kept dependency-free here.
type ExtensionSets struct {
	Video    []string
	Audio    []string
	Subtitle []string
}

func (s ExtensionSets) classify(ext string) Role {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if contains(s.Video, ext) {
		return RoleVideo
	}
	if contains(s.Audio, ext) {
		return RoleAudio
	}
	if contains(s.Subtitle, ext) {
		return RoleSubtitle
	}
	return RoleOther
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Scan walks every input path (a file used as-is, a directory scanned,
// recursively when recursive is true) and returns every Video/Audio/Subtitle
// file found, classified and identified. Other files are dropped silently.
// Relative paths are computed against the nearest enclosing input root so
// mixing explicit files and directories in one invocation still yields
// stable relative paths, per spec.md §4.3.
func Scan(inputs []string, recursive bool, exts ExtensionSets) ([]MediaFile, error) {
	var out []MediaFile
	visited := map[string]bool{}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, subxerr.Wrap(subxerr.KindIoNotFound, "input path not found: "+input, err)
		}
		if !info.IsDir() {
			root := filepath.Dir(input)
			mf, ok, err := buildMediaFile(input, root, exts)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, mf)
			}
			continue
		}

		root := input
		err = walkDir(root, root, recursive, visited, exts, &out)
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func walkDir(dir, root string, recursive bool, visited map[string]bool, exts ExtensionSets, out *[]MediaFile) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return subxerr.Wrap(subxerr.KindIoNotFound, "cannot resolve directory: "+dir, err)
	}
	if visited[real] {
		return subxerr.New(subxerr.KindIoPermission, "symlink cycle detected at "+dir)
	}
	visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return subxerr.Wrap(subxerr.KindIoPermission, "cannot read directory: "+dir, err)
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		info, err := os.Stat(full) // follows symlinks
		if err != nil {
			continue
		}
		if info.IsDir() {
			if recursive {
				if err := walkDir(full, root, recursive, visited, exts, out); err != nil {
					return err
				}
			}
			continue
		}
		mf, ok, err := buildMediaFile(full, root, exts)
		if err != nil {
			return err
		}
		if ok {
			*out = append(*out, mf)
		}
	}
	return nil
}

func buildMediaFile(path, root string, exts ExtensionSets) (MediaFile, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return MediaFile{}, false, subxerr.Wrap(subxerr.KindIoNotFound, "cannot stat file: "+path, err)
	}
	ext := filepath.Ext(path)
	role := exts.classify(ext)
	if role == RoleOther {
		return MediaFile{}, false, nil
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	mf := MediaFile{
		AbsPath:      abs,
		Name:         filepath.Base(path),
		Ext:          strings.ToLower(strings.TrimPrefix(ext, ".")),
		RelPath:      rel,
		Role:         role,
		Size:         info.Size(),
		ModifiedUnix: info.ModTime().Unix(),
	}
	mf.ID = Identity(mf.RelPath, mf.Size)
	return mf, true, nil
}

// Identity computes the stable content identity described in spec.md §3.3:
// a 16-hex-digit file_<hash> derived from a non-randomized hash of the
// relative path and size. SHA-256 (truncated to 64 bits) stands in for a
// bespoke non-cryptographic hash — deterministic across processes and
// platforms, unlike Go's randomized map/fnv seeds would require extra care
// to avoid.
func Identity(relPath string, size int64) string {
	h := sha256.New()
	h.Write([]byte(relPath))
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(size))
	h.Write(sizeBuf[:])
	sum := h.Sum(nil)
	return fmt.Sprintf("file_%s", hex.EncodeToString(sum[:8]))
}
