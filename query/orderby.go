package query

import (
	"sort"
	"strings"
)

// ApplyOrderBy stably sorts rows by the ORDER BY keys. Each key is looked
// up in the row directly and then as a dotted path. A row missing the key
// is compared as a whole record. Rows that compare equal on every key keep
// their relative order.
func ApplyOrderBy(rows []Row, orderBy []OrderByItem) []Row {
	if len(rows) == 0 || len(orderBy) == 0 {
		return rows
	}

	// Create a copy to avoid modifying the original slice
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	segments := make([][]string, len(orderBy))
	for i, item := range orderBy {
		segments[i] = strings.Split(item.Column, ".")
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		for k, item := range orderBy {
			valI := sortValue(sorted[i], item.Column, segments[k])
			valJ := sortValue(sorted[j], item.Column, segments[k])

			cmp := compareNatural(valI, valJ)
			if cmp != 0 {
				if item.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			// Values are equal, continue to next ORDER BY key
		}
		return false
	})

	return sorted
}

// sortValue returns the value row sorts on for key, or the row itself when
// the key is absent
func sortValue(row Row, key string, segments []string) Value {
	if v, ok := row.Get(key); ok && !v.IsNull() {
		return v
	}
	if len(segments) > 1 {
		if v, ok := resolveSegments(row, segments); ok {
			return v
		}
	}
	return Nested(row)
}

// compareNatural orders two raw values: numerically when both are numbers,
// otherwise by their string forms.
func compareNatural(a, b Value) int {
	aNum, aIsNum := a.AsNumber()
	bNum, bIsNum := b.AsNumber()
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Text(), b.Text())
}

// ApplyLimitOffset applies LIMIT and OFFSET to rows
func ApplyLimitOffset(rows []Row, limit *int64, offset *int64) []Row {
	if len(rows) == 0 {
		return rows
	}

	start := int64(0)
	if offset != nil && *offset > 0 {
		start = *offset
	}

	// If offset is beyond the end, return empty
	if start >= int64(len(rows)) {
		return []Row{}
	}

	end := int64(len(rows))
	if limit != nil && *limit >= 0 {
		end = start + *limit
		if end > int64(len(rows)) {
			end = int64(len(rows))
		}
	}

	return rows[start:end]
}
