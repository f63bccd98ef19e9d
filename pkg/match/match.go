// Package match implements the matching engine (spec.md §4.6): discover and
// classify media, consult the dry-run cache, call the pairing oracle on a
// miss, derive target filenames, resolve filesystem conflicts, and execute
// (or merely record, under dry-run) the resulting rename/copy/move
// operations. Grounded on the teacher's internal/core orchestration shape —
// a thin Engine composing narrowly-scoped services — and on
// internal/core/worker_pool.go for the concurrent execution stage.
package match

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	iso "github.com/barbashov/iso639-3"
	"github.com/rs/zerolog"

	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/matchcache"
	"github.com/subx-cli/subx/pkg/oracle"
	"github.com/subx-cli/subx/pkg/subxerr"
	"github.com/subx-cli/subx/pkg/worker"
)

// Mode selects the filesystem effect of an accepted pairing.
type Mode string

const (
	ModeRenameInPlace Mode = "rename-in-place"
	ModeCopyToVideo   Mode = "copy-to-video-dir"
	ModeMoveToVideo   Mode = "move-to-video-dir"
)

// priority implements the Rename < Copy < Move ordering spec.md §4.6 calls
// for when enable_task_priorities is set: in-place work should drain first.
func (m Mode) priority() int {
	switch m {
	case ModeRenameInPlace:
		return 0
	case ModeCopyToVideo:
		return 1
	case ModeMoveToVideo:
		return 2
	default:
		return 3
	}
}

// Action records what actually happened to one pair, for the caller to
// render.
type Action string

const (
	ActionPlanned    Action = "planned" // dry-run: computed but not executed
	ActionRenamed    Action = "renamed"
	ActionCopied     Action = "copied"
	ActionMoved      Action = "moved"
	ActionSkippedSame Action = "skipped-identical"
	ActionFailed     Action = "failed"
)

// Operation is one resolved match, the in-memory counterpart of
// matchcache.Operation plus the execution-time fields the caller needs.
type Operation struct {
	VideoID         string
	SubtitleID      string
	VideoPath       string
	SubtitlePath    string
	ProposedNewName string
	DestinationPath string
	Confidence      float64
	Reasoning       []string
	Mode            Mode
	Action          Action
	Err             error
}

// Request parameterizes one matching pass.
type Request struct {
	Inputs               []string
	Recursive            bool
	ConfidenceThreshold  float64 // already normalized to [0,1]
	Mode                 Mode
	Backup               bool
	DryRun               bool
	MaxConcurrentJobs    int
	EnableTaskPriorities bool
	OverflowStrategy     worker.OverflowStrategy
	ConfigHash           string
	// OnProgress, when non-nil, is called from a worker goroutine once per
	// completed filesystem operation during execute, with the number done so
	// far and the batch total; the caller (typically the CLI, gated behind
	// general.enable_progress_bar) uses it to drive a progress indicator.
	OnProgress func(done, total int)
}

// Engine composes discovery, the dry-run cache, and the pairing oracle into
// the full matching algorithm.
type Engine struct {
	exts  discover.ExtensionSets
	cache *matchcache.Store
	or    oracle.Oracle
	log   zerolog.Logger
}

func NewEngine(exts discover.ExtensionSets, cache *matchcache.Store, or oracle.Oracle, log zerolog.Logger) *Engine {
	return &Engine{exts: exts, cache: cache, or: or, log: log.With().Str("component", "match").Logger()}
}

// Run executes the full algorithm described in spec.md §4.6 and returns one
// Operation per accepted pairing, in a stable (video id, subtitle id) order.
func (e *Engine) Run(ctx context.Context, req Request) ([]Operation, error) {
	files, err := discover.Scan(req.Inputs, req.Recursive, e.exts)
	if err != nil {
		return nil, err
	}

	var videos, subtitles []discover.MediaFile
	for _, f := range files {
		switch f.Role {
		case discover.RoleVideo:
			videos = append(videos, f)
		case discover.RoleSubtitle:
			subtitles = append(subtitles, f)
		}
	}
	if len(videos) == 0 || len(subtitles) == 0 {
		return nil, nil
	}

	root := commonRoot(req.Inputs)
	fp := discover.BuildFingerprint(root, req.Recursive, files)

	var pairings []oracle.Pairing
	if rec, ok := e.cache.Lookup(root, req.Recursive, fp, e.or.ModelID(), req.ConfigHash); ok {
		e.log.Info().Msg("dry-run cache hit, skipping oracle")
		pairings = make([]oracle.Pairing, len(rec.Operations))
		for i, op := range rec.Operations {
			pairings[i] = oracle.Pairing{
				VideoID: op.VideoID, SubtitleID: op.SubtitleID,
				Confidence: op.Confidence, Reasoning: op.Reasoning,
			}
		}
	} else {
		videoRefs := toFileRefs(videos, root)
		subRefs := toFileRefs(subtitles, root)
		pairings, err = e.or.Pair(ctx, videoRefs, subRefs)
		if err != nil {
			return nil, err
		}
	}

	byID := make(map[string]discover.MediaFile, len(files))
	for _, f := range files {
		byID[f.ID] = f
	}

	var ops []Operation
	for _, p := range pairings {
		if p.Confidence < req.ConfidenceThreshold {
			continue
		}
		video, okV := byID[p.VideoID]
		sub, okS := byID[p.SubtitleID]
		if !okV || !okS {
			e.log.Warn().Str("video_id", p.VideoID).Str("subtitle_id", p.SubtitleID).Msg("oracle referenced unknown id, dropped")
			continue
		}
		op := Operation{
			VideoID: p.VideoID, SubtitleID: p.SubtitleID,
			VideoPath: video.AbsPath, SubtitlePath: sub.AbsPath,
			Confidence: p.Confidence, Reasoning: p.Reasoning,
			Mode: req.Mode,
		}
		op.ProposedNewName = deriveFilename(video.Name, sub.Name)
		op.DestinationPath = resolveDestination(req.Mode, video.AbsPath, sub.AbsPath, op.ProposedNewName)
		ops = append(ops, op)
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].VideoID != ops[j].VideoID {
			return ops[i].VideoID < ops[j].VideoID
		}
		return ops[i].SubtitleID < ops[j].SubtitleID
	})

	if req.DryRun {
		for i := range ops {
			ops[i].Action = ActionPlanned
		}
		e.persist(root, req, fp, ops)
		return ops, nil
	}

	ops = e.execute(ctx, req, ops)
	e.persist(root, req, fp, ops)
	return ops, nil
}

func (e *Engine) persist(root string, req Request, fp discover.Fingerprint, ops []Operation) {
	rec := matchcache.Record{
		DirectoryRoot: root,
		Recursive:     req.Recursive,
		Fingerprint:   fp,
		OracleModelID: e.or.ModelID(),
		ConfigHash:    req.ConfigHash,
	}
	for _, op := range ops {
		rec.Operations = append(rec.Operations, matchcache.Operation{
			VideoID: op.VideoID, SubtitleID: op.SubtitleID,
			ProposedNewName: op.ProposedNewName,
			Confidence:      op.Confidence, Reasoning: op.Reasoning,
		})
	}
	if err := e.cache.Write(rec, nowFunc()); err != nil {
		e.log.Warn().Err(err).Msg("failed to persist dry-run cache, continuing")
	}
}

// execute runs every accepted pairing's filesystem effect concurrently
// through the bounded worker pool, isolating per-pair failures from the rest
// of the batch per spec.md §4.6 step 8.
func (e *Engine) execute(ctx context.Context, req Request, ops []Operation) []Operation {
	jobs := req.MaxConcurrentJobs
	if jobs <= 0 {
		jobs = 1
	}
	var wopts []worker.Option[Operation]
	if req.OverflowStrategy != "" {
		wopts = append(wopts, worker.WithOverflowStrategy[Operation](req.OverflowStrategy))
	}
	if req.EnableTaskPriorities {
		wopts = append(wopts, worker.WithPriority[Operation](true))
	}
	pool := worker.New[Operation](jobs, len(ops)+1, wopts...)

	var completed int32
	total := len(ops)
	tasks := make([]worker.Task[Operation], len(ops))
	for i, op := range ops {
		op := op
		tasks[i] = worker.Task[Operation]{
			Index:    i,
			Priority: op.Mode.priority(),
			Run: func() (Operation, error) {
				resolved, skipped, err := resolveConflict(op, req.Backup)
				switch {
				case err != nil:
					resolved.Action = ActionFailed
					resolved.Err = err
				case skipped:
					resolved.Action = ActionSkippedSame
				default:
					resolved = applyOperation(resolved)
				}
				if req.OnProgress != nil {
					req.OnProgress(int(atomic.AddInt32(&completed, 1)), total)
				}
				return resolved, nil // isolate: don't cancel the batch
			},
		}
	}

	results, _ := pool.Run(ctx, tasks)
	out := make([]Operation, len(ops))
	for i, r := range results {
		if r.Cancelled {
			op := ops[i]
			op.Action = ActionFailed
			op.Err = r.Err
			out[i] = op
			continue
		}
		out[i] = r.Value
	}
	return out
}

// deriveFilename implements spec.md §4.6 step 5: strip the video's
// extension, append the subtitle's extension, and re-attach a detected
// language-code token from the subtitle's original basename (e.g.
// Matrix.1999.mkv + Matrix_EN.srt -> Matrix.1999.en.srt).
func deriveFilename(videoName, subtitleName string) string {
	videoStem := strings.TrimSuffix(videoName, filepath.Ext(videoName))
	subExt := filepath.Ext(subtitleName)
	subStem := strings.TrimSuffix(subtitleName, subExt)

	lang := extractLanguageToken(subStem)
	if lang == "" {
		return videoStem + subExt
	}
	return videoStem + "." + lang + subExt
}

// extractLanguageToken scans a subtitle's basename for a dash/underscore/dot
// separated token that resolves to a known ISO 639-3 language (or a common
// two-letter alias iso639-3 recognizes via FromAnyCode), returning it
// lower-cased. Empty when no token matches.
func extractLanguageToken(stem string) string {
	tokens := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
	for i := len(tokens) - 1; i >= 0; i-- {
		t := strings.ToLower(tokens[i])
		if lang := iso.FromAnyCode(t); lang != nil {
			return t
		}
	}
	return ""
}

func resolveDestination(mode Mode, videoPath, subtitlePath, newName string) string {
	switch mode {
	case ModeCopyToVideo, ModeMoveToVideo:
		return filepath.Join(filepath.Dir(videoPath), newName)
	default:
		return filepath.Join(filepath.Dir(subtitlePath), newName)
	}
}

// resolveConflict implements spec.md §4.6 step 7: byte-identical existing
// destination is a silent success (skipped=true); otherwise, when backup is
// requested, the pre-existing file is renamed to <name>.bak and the
// destination is kept, and without backup a free numeric-suffixed name is
// found.
func resolveConflict(op Operation, backup bool) (resolved Operation, skipped bool, err error) {
	dest := op.DestinationPath
	if _, statErr := os.Stat(dest); statErr != nil {
		if os.IsNotExist(statErr) {
			return op, false, nil
		}
		return op, false, subxerr.Wrap(subxerr.KindIoPermission, "failed to stat destination "+dest, statErr)
	}

	identical, err := filesIdentical(op.SubtitlePath, dest)
	if err != nil {
		return op, false, err
	}
	if identical {
		return op, true, nil
	}

	if backup {
		bakPath := dest + ".bak"
		if err := os.Rename(dest, bakPath); err != nil {
			return op, false, subxerr.Wrap(subxerr.KindIoPermission, "failed to back up "+dest, err)
		}
		return op, false, nil
	}

	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d%s", base, n, ext)
		if _, statErr := os.Stat(candidate); os.IsNotExist(statErr) {
			op.DestinationPath = candidate
			return op, false, nil
		}
	}
}

func applyOperation(op Operation) Operation {
	switch op.Mode {
	case ModeRenameInPlace:
		if op.DestinationPath != op.SubtitlePath {
			if err := os.Rename(op.SubtitlePath, op.DestinationPath); err != nil {
				op.Action = ActionFailed
				op.Err = subxerr.Wrap(subxerr.KindIoPermission, "rename failed", err)
				return op
			}
		}
		op.Action = ActionRenamed
	case ModeCopyToVideo:
		if filepath.Dir(op.SubtitlePath) == filepath.Dir(op.DestinationPath) {
			if err := os.Rename(op.SubtitlePath, op.DestinationPath); err != nil {
				op.Action = ActionFailed
				op.Err = subxerr.Wrap(subxerr.KindIoPermission, "rename failed", err)
				return op
			}
			op.Action = ActionRenamed
			return op
		}
		if err := copyFile(op.SubtitlePath, op.DestinationPath); err != nil {
			op.Action = ActionFailed
			op.Err = err
			return op
		}
		op.Action = ActionCopied
	case ModeMoveToVideo:
		if filepath.Dir(op.SubtitlePath) == filepath.Dir(op.DestinationPath) {
			if err := os.Rename(op.SubtitlePath, op.DestinationPath); err != nil {
				op.Action = ActionFailed
				op.Err = subxerr.Wrap(subxerr.KindIoPermission, "rename failed", err)
				return op
			}
			op.Action = ActionMoved
			return op
		}
		if err := copyFile(op.SubtitlePath, op.DestinationPath); err != nil {
			op.Action = ActionFailed
			op.Err = err
			return op
		}
		if err := verifyIdentical(op.SubtitlePath, op.DestinationPath); err != nil {
			op.Action = ActionFailed
			op.Err = err
			return op
		}
		if err := os.Remove(op.SubtitlePath); err != nil {
			op.Action = ActionFailed
			op.Err = subxerr.Wrap(subxerr.KindIoPermission, "failed to remove source after move", err)
			return op
		}
		op.Action = ActionMoved
	}
	return op
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return subxerr.Wrap(subxerr.KindIoNotFound, "failed to open source "+src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to create destination directory", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to create destination "+dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return subxerr.Wrap(subxerr.KindIoPermission, "failed to copy to "+dst, err)
	}
	return out.Close()
}

func verifyIdentical(a, b string) error {
	identical, err := filesIdentical(a, b)
	if err != nil {
		return err
	}
	if !identical {
		return subxerr.New(subxerr.KindIoPermission, "move verification failed: copy does not match source")
	}
	return nil
}

func filesIdentical(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, subxerr.Wrap(subxerr.KindIoNotFound, "failed to stat "+a, err)
	}
	bi, err := os.Stat(b)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, subxerr.Wrap(subxerr.KindIoPermission, "failed to stat "+b, err)
	}
	if ai.Size() != bi.Size() {
		return false, nil
	}
	ah, err := hashFile(a)
	if err != nil {
		return false, err
	}
	bh, err := hashFile(b)
	if err != nil {
		return false, err
	}
	return ah == bh, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", subxerr.Wrap(subxerr.KindIoNotFound, "failed to open "+path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", subxerr.Wrap(subxerr.KindIoPermission, "failed to hash "+path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func toFileRefs(files []discover.MediaFile, root string) []oracle.FileRef {
	refs := make([]oracle.FileRef, len(files))
	for i, f := range files {
		refs[i] = oracle.FileRef{ID: f.ID, Name: f.Name, RelPath: f.RelPath}
	}
	return refs
}

func commonRoot(inputs []string) string {
	if len(inputs) == 0 {
		return ""
	}
	if len(inputs) == 1 {
		abs, err := filepath.Abs(inputs[0])
		if err != nil {
			return inputs[0]
		}
		return abs
	}
	sorted := append([]string(nil), inputs...)
	sort.Strings(sorted)
	return filepath.Dir(sorted[0])
}

// nowFunc is a seam the test suite overrides to avoid a real wall-clock
// read in the matcher.
var nowFunc = realNow
