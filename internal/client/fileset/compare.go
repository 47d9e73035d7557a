package fileset

import (
	"slices"
)

// Snapshot is the comparison view of one file: its name, classified type and
// server identifier (empty for files not yet persisted).
type Snapshot struct {
	Name         string
	Type         FileType
	ServerFileID string
}

// SnapshotOf classifies name and pairs it with its server id.
func SnapshotOf(name, serverFileID string) Snapshot {
	return Snapshot{Name: name, Type: TypeByExtension(name), ServerFileID: serverFileID}
}

// Changed reports whether current differs from original.
//
// Different lengths always mean changed. Otherwise both sides are grouped by
// type: the single-file schema groups compare server id and name, and the
// test-data group compares its sorted name list.
func Changed(original, current []Snapshot) bool {
	if len(original) != len(current) {
		return true
	}

	orig := groupByType(original)
	cur := groupByType(current)

	for _, t := range []FileType{JSONSchema, XSDSchema} {
		if singleChanged(orig[t], cur[t]) {
			return true
		}
	}

	return !slices.Equal(sortedNames(orig[TestData]), sortedNames(cur[TestData]))
}

func groupByType(files []Snapshot) map[FileType][]Snapshot {
	g := make(map[FileType][]Snapshot, 3)
	for _, f := range files {
		t := f.Type
		if t == "" {
			t = TypeByExtension(f.Name)
		}
		g[t] = append(g[t], f)
	}
	return g
}

func singleChanged(a, b []Snapshot) bool {
	if len(a) != len(b) {
		return true
	}
	if len(a) == 0 {
		return false
	}
	return a[0].ServerFileID != b[0].ServerFileID || a[0].Name != b[0].Name
}

func sortedNames(files []Snapshot) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	slices.Sort(names)
	return names
}
