// Package diff compares state versions and orders their changes for the
// unified diff view.
package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"statedeck/internal/versions/models"
	dErrors "statedeck/pkg/domain-errors"
)

// Diff holds the changes between two versions, split by change type.
type Diff struct {
	From          string             `json:"from"`
	To            string             `json:"to"`
	Additions     []models.DiffChunk `json:"additions"`
	Deletions     []models.DiffChunk `json:"deletions"`
	Modifications []models.DiffChunk `json:"modifications"`
}

// Stats counts changes per type.
type Stats struct {
	Additions     int `json:"additions"`
	Deletions     int `json:"deletions"`
	Modifications int `json:"modifications"`
	Total         int `json:"total"`
}

// Stats returns the change counts.
func (d Diff) Stats() Stats {
	s := Stats{
		Additions:     len(d.Additions),
		Deletions:     len(d.Deletions),
		Modifications: len(d.Modifications),
	}
	s.Total = s.Additions + s.Deletions + s.Modifications
	return s
}

// Empty reports whether the versions are identical.
func (d Diff) Empty() bool {
	return d.Stats().Total == 0
}

// Unified returns every change in display order. See Merge.
func (d Diff) Unified() []models.DiffChunk {
	return Merge(d.Additions, d.Deletions, d.Modifications)
}

// Merge concatenates additions, deletions and modifications, then sorts by
// path and line number (missing line numbers count as zero). The sort is
// stable, so chunks with equal keys keep concatenation order: additions, then
// deletions, then modifications. Inputs are not modified.
func Merge(additions, deletions, modifications []models.DiffChunk) []models.DiffChunk {
	out := make([]models.DiffChunk, 0, len(additions)+len(deletions)+len(modifications))
	out = append(out, additions...)
	out = append(out, deletions...)
	out = append(out, modifications...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line() < out[j].Line()
	})
	return out
}

// Compare diffs the JSON content of two versions leaf by leaf. Leaf values are
// carried as compact JSON. A chunk's line number is the leaf's position in the
// sorted leaf list of the version holding its value: from for deletions, to
// for additions and modifications.
func Compare(from, to models.StateVersion) (Diff, error) {
	oldLeaves, err := flatten(from)
	if err != nil {
		return Diff{}, err
	}
	newLeaves, err := flatten(to)
	if err != nil {
		return Diff{}, err
	}

	oldLines := lineIndex(oldLeaves)
	newLines := lineIndex(newLeaves)

	d := Diff{
		From:          from.ID,
		To:            to.ID,
		Additions:     []models.DiffChunk{},
		Deletions:     []models.DiffChunk{},
		Modifications: []models.DiffChunk{},
	}

	for _, path := range sortedPaths(newLeaves) {
		newValue := newLeaves[path]
		oldValue, existed := oldLeaves[path]
		switch {
		case !existed:
			d.Additions = append(d.Additions, models.DiffChunk{
				Path: path, NewValue: newValue, LineNumber: line(newLines[path]), Type: models.ChangeAddition,
			})
		case !bytes.Equal(oldValue, newValue):
			d.Modifications = append(d.Modifications, models.DiffChunk{
				Path: path, OldValue: oldValue, NewValue: newValue, LineNumber: line(newLines[path]), Type: models.ChangeModification,
			})
		}
	}
	for _, path := range sortedPaths(oldLeaves) {
		if _, kept := newLeaves[path]; kept {
			continue
		}
		d.Deletions = append(d.Deletions, models.DiffChunk{
			Path: path, OldValue: oldLeaves[path], LineNumber: line(oldLines[path]), Type: models.ChangeDeletion,
		})
	}

	return d, nil
}

func line(n int) *int { return &n }

func flatten(v models.StateVersion) (map[string]json.RawMessage, error) {
	leaves := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(v.Content)) == 0 {
		return leaves, nil
	}

	var doc any
	if err := json.Unmarshal(v.Content, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("version %s: content is not valid JSON", v.ID))
	}
	if err := walk("", doc, leaves); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("version %s: flatten content", v.ID))
	}
	return leaves, nil
}

// walk records every scalar, and every empty object or array, under its path.
func walk(path string, node any, leaves map[string]json.RawMessage) error {
	switch n := node.(type) {
	case map[string]any:
		if len(n) > 0 {
			for key, child := range n {
				if err := walk(joinKey(path, key), child, leaves); err != nil {
					return err
				}
			}
			return nil
		}
	case []any:
		if len(n) > 0 {
			for i, child := range n {
				if err := walk(path+"["+strconv.Itoa(i)+"]", child, leaves); err != nil {
					return err
				}
			}
			return nil
		}
	}

	raw, err := json.Marshal(node)
	if err != nil {
		return err
	}
	if path == "" {
		path = "$"
	}
	leaves[path] = raw
	return nil
}

func joinKey(parent, key string) string {
	if strings.ContainsAny(key, ".[]\"") || key == "" {
		return parent + "[" + strconv.Quote(key) + "]"
	}
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func sortedPaths(leaves map[string]json.RawMessage) []string {
	paths := make([]string, 0, len(leaves))
	for p := range leaves {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func lineIndex(leaves map[string]json.RawMessage) map[string]int {
	idx := make(map[string]int, len(leaves))
	for i, p := range sortedPaths(leaves) {
		idx[p] = i + 1
	}
	return idx
}
