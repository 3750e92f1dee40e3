// Package ranking implements standard competition ranking with shared
// positions for tied scores. The same algorithm serves both working
// records and published snapshots so the two read paths never disagree.
package ranking

import (
	"fmt"
	"sort"

	"github.com/brightclass/results-api/internal/models"
)

// Epsilon under which two average marks rank as tied.
const Epsilon = 1e-9

// Entry is one student's input to class ranking.
type Entry struct {
	StudentID    string
	ClassName    string
	Term         string
	Stream       string
	AverageMarks float64
}

// Position is a student's computed standing within a cohort.
type Position struct {
	Pos       int    `json:"pos"`
	Size      int    `json:"size"`
	ClassName string `json:"classname,omitempty"`
	Term      string `json:"term,omitempty"`
	Stream    string `json:"stream,omitempty"`
	Group     string `json:"group,omitempty"`
}

// SubjectMark is one student's mark in a single subject cohort.
type SubjectMark struct {
	StudentID string
	Mark      float64
}

func sameScore(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= Epsilon
}

// ComputePositions groups entries into ranking cohorts by (class, term),
// additionally splitting stream classes by stream when mode is separate,
// and assigns shared-tie competition positions. Students without an
// allocated stream form their own cohort. usesStream decides whether a
// class carries streams for this tenant.
func ComputePositions(entries []Entry, mode models.RankingMode, usesStream func(className string) bool) map[string]Position {
	positions := make(map[string]Position, len(entries))
	groups := make(map[string][]Entry)
	order := make([]string, 0)
	for _, entry := range entries {
		key := fmt.Sprintf("%s__%s", entry.ClassName, entry.Term)
		if mode == models.RankingSeparate && usesStream != nil && usesStream(entry.ClassName) {
			stream := entry.Stream
			if stream == "" || stream == models.StreamUnassigned {
				stream = "Unassigned"
			}
			key = fmt.Sprintf("%s__%s__%s", entry.ClassName, entry.Term, stream)
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry)
	}

	for _, key := range order {
		group := groups[key]
		sorted := make([]Entry, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].AverageMarks > sorted[j].AverageMarks
		})

		currentPos := 0
		prevScore := 0.0
		havePrev := false
		for idx, entry := range sorted {
			if entry.StudentID == "" {
				continue
			}
			if !havePrev || !sameScore(entry.AverageMarks, prevScore) {
				currentPos = idx + 1
			}
			positions[entry.StudentID] = Position{
				Pos:       currentPos,
				Size:      len(sorted),
				ClassName: entry.ClassName,
				Term:      entry.Term,
				Stream:    entry.Stream,
				Group:     key,
			}
			prevScore = entry.AverageMarks
			havePrev = true
		}
	}
	return positions
}

// RankMarks ranks one already-partitioned cohort by raw mark, returning
// shared-tie positions. Used per subject, where the per-subject overall
// mark replaces the average as the sort key.
func RankMarks(marks []SubjectMark) map[string]Position {
	sorted := make([]SubjectMark, len(marks))
	copy(sorted, marks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Mark > sorted[j].Mark
	})

	positions := make(map[string]Position, len(sorted))
	currentPos := 0
	prevScore := 0.0
	havePrev := false
	for idx, mark := range sorted {
		if mark.StudentID == "" {
			continue
		}
		if !havePrev || !sameScore(mark.Mark, prevScore) {
			currentPos = idx + 1
		}
		positions[mark.StudentID] = Position{Pos: currentPos, Size: len(sorted)}
		prevScore = mark.Mark
		havePrev = true
	}
	return positions
}
