package gitws

import (
	"os"
	"path/filepath"
	"strings"
)

// conflictDiff builds a unified diff of the two sides of the first
// conflicted file, for use as a trial diagnostic. Returns "" when the file
// cannot be read or carries no markers (e.g. a binary conflict).
func (w *Workspace) conflictDiff(path string) string {
	data, err := os.ReadFile(filepath.Join(w.dir, path))
	if err != nil {
		return ""
	}
	ours, theirs, ok := splitConflictSides(string(data))
	if !ok {
		return ""
	}
	return w.differ.ComputeDiff(path+" (ours)", path+" (theirs)", []byte(ours), []byte(theirs))
}

// splitConflictSides reconstructs the two sides of a conflicted file by
// resolving every marker block to ours and theirs respectively. Handles the
// diff3 style (||||||| base section) as well as the default two-way markers.
func splitConflictSides(content string) (ours, theirs string, found bool) {
	const (
		common = iota
		inOurs
		inBase
		inTheirs
	)

	var oursLines, theirsLines []string
	section := common

	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "<<<<<<<"):
			section, found = inOurs, true
		case strings.HasPrefix(line, "|||||||") && section == inOurs:
			section = inBase
		case strings.HasPrefix(line, "=======") && (section == inOurs || section == inBase):
			section = inTheirs
		case strings.HasPrefix(line, ">>>>>>>") && section == inTheirs:
			section = common
		default:
			if section == common || section == inOurs {
				oursLines = append(oursLines, line)
			}
			if section == common || section == inTheirs {
				theirsLines = append(theirsLines, line)
			}
		}
	}

	return strings.Join(oursLines, "\n"), strings.Join(theirsLines, "\n"), found
}
