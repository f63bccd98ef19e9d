package discover

import "sort"

// FingerprintEntry is one normalized record in a DirectoryFingerprint.
type FingerprintEntry struct {
	Name string
	Size int64
	Mtime int64
	Role Role
}

// Fingerprint is a reproducible summary of a directory scan's contents,
// used by pkg/matchcache to decide cache validity.
type Fingerprint struct {
	Root      string
	Recursive bool
	Entries   []FingerprintEntry
}

// BuildFingerprint derives a Fingerprint from a scan's results. The entry
// list is sorted so two fingerprints of the same logical content compare
// equal regardless of filesystem iteration order.
func BuildFingerprint(root string, recursive bool, files []MediaFile) Fingerprint {
	entries := make([]FingerprintEntry, len(files))
	for i, f := range files {
		entries[i] = FingerprintEntry{Name: f.RelPath, Size: f.Size, Mtime: f.ModifiedUnix, Role: f.Role}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return Fingerprint{Root: root, Recursive: recursive, Entries: entries}
}

// Equal reports whether two fingerprints describe the same directory state:
// same root, same recursion flag, and element-wise equal normalized lists.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.Root != other.Root || f.Recursive != other.Recursive || len(f.Entries) != len(other.Entries) {
		return false
	}
	for i := range f.Entries {
		if f.Entries[i] != other.Entries[i] {
			return false
		}
	}
	return true
}
