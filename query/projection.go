package query

import (
	"strings"
)

// Projection is one output column: where to read it from and which key it
// is written under.
type Projection struct {
	Path     string   // field path as written in the query
	Key      string   // output key: the alias, else the last path segment
	segments []string // resolution path
}

// ExpandSelectList resolves the SELECT list into concrete projections. Each
// * is replaced, in place, by the keys of the first row of the table; an
// empty table contributes no keys.
//
// Unaliased nested paths are keyed by their last segment, so profile.name
// and account.name both write to "name" and the later one wins.
func ExpandSelectList(selectList []SelectItem, rows []Row) []Projection {
	projections := make([]Projection, 0, len(selectList))
	for _, item := range selectList {
		if item.Path == "*" {
			if len(rows) == 0 {
				continue
			}
			for _, key := range rows[0].Keys() {
				projections = append(projections, Projection{
					Path:     key,
					Key:      key,
					segments: []string{key},
				})
			}
			continue
		}

		segments := strings.Split(item.Path, ".")
		key := item.Alias
		if key == "" {
			key = segments[len(segments)-1]
		}
		projections = append(projections, Projection{
			Path:     item.Path,
			Key:      key,
			segments: segments,
		})
	}
	return projections
}

// Project builds the output record for row. Fields that do not resolve are
// left out. Values are deep-copied so the result shares nothing with row.
func Project(row Row, projections []Projection) Row {
	out := NewRow()
	for _, proj := range projections {
		segments := proj.segments
		if segments == nil {
			segments = strings.Split(proj.Path, ".")
		}
		value, ok := resolveSegments(row, segments)
		if !ok {
			continue
		}
		out.Set(proj.Key, value.clone())
	}
	return out
}

// ApplySelectList projects every row
func ApplySelectList(rows []Row, projections []Projection) []Row {
	projected := make([]Row, 0, len(rows))
	for _, row := range rows {
		projected = append(projected, Project(row, projections))
	}
	return projected
}
