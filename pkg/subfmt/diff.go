package subfmt

// EntryDiff describes one entry-level change between two documents,
// produced by Diff for convert's --dry-run preview.
type EntryDiff struct {
	Index      int
	Kind       string // "unchanged", "retimed", "retext", "retimed+retext", "added", "removed"
	Before     *Entry
	After      *Entry
}

// Diff compares two documents positionally (by index after Normalize) and
// reports what changed. It does not attempt to align entries across
// insertions/deletions — it is a conversion preview, not a text diff.
func Diff(before, after *Document) []EntryDiff {
	before.Normalize()
	after.Normalize()

	n := len(before.Entries)
	if len(after.Entries) > n {
		n = len(after.Entries)
	}
	out := make([]EntryDiff, 0, n)
	for i := 0; i < n; i++ {
		var b, a *Entry
		if i < len(before.Entries) {
			e := before.Entries[i]
			b = &e
		}
		if i < len(after.Entries) {
			e := after.Entries[i]
			a = &e
		}
		out = append(out, classifyDiff(i+1, b, a))
	}
	return out
}

func classifyDiff(index int, b, a *Entry) EntryDiff {
	switch {
	case b == nil:
		return EntryDiff{Index: index, Kind: "added", After: a}
	case a == nil:
		return EntryDiff{Index: index, Kind: "removed", Before: b}
	case b.Start == a.Start && b.End == a.End && b.Text == a.Text:
		return EntryDiff{Index: index, Kind: "unchanged", Before: b, After: a}
	case b.Text != a.Text && (b.Start != a.Start || b.End != a.End):
		return EntryDiff{Index: index, Kind: "retimed+retext", Before: b, After: a}
	case b.Start != a.Start || b.End != a.End:
		return EntryDiff{Index: index, Kind: "retimed", Before: b, After: a}
	default:
		return EntryDiff{Index: index, Kind: "retext", Before: b, After: a}
	}
}
