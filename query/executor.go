package query

// Select parses queryText and runs it against ds. Syntax errors are
// returned before the dataset is touched; a table missing from ds yields a
// *LookupError. The dataset is only read, so concurrent calls over a
// dataset nobody mutates are safe.
func Select(queryText string, ds Dataset) ([]Row, error) {
	q, err := Parse(queryText)
	if err != nil {
		return nil, err
	}
	return q.Execute(ds)
}

// Execute runs a parsed query: filter and project the table's rows, sort,
// then apply LIMIT/OFFSET.
func (q *Query) Execute(ds Dataset) ([]Row, error) {
	rows, ok := ds[q.TableName]
	if !ok {
		return nil, &LookupError{Table: q.TableName}
	}

	projections := ExpandSelectList(q.SelectList, rows)

	result := make([]Row, 0)
	for _, row := range rows {
		if Matches(row, q.Conditions) {
			result = append(result, Project(row, projections))
		}
	}

	result = ApplyOrderBy(result, q.effectiveOrder(projections))
	result = ApplyLimitOffset(result, q.Limit, q.Offset)

	return result, nil
}

// effectiveOrder maps ORDER BY keys onto output keys. Without an ORDER BY
// the first projected field is sorted ascending. A key naming a selected
// path sorts by that field's output key.
func (q *Query) effectiveOrder(projections []Projection) []OrderByItem {
	if len(q.OrderBy) == 0 {
		if len(projections) == 0 {
			return nil
		}
		return []OrderByItem{{Column: projections[0].Key}}
	}

	order := make([]OrderByItem, len(q.OrderBy))
	for i, item := range q.OrderBy {
		order[i] = item
		for _, proj := range projections {
			if proj.Path == item.Column {
				order[i].Column = proj.Key
				break
			}
		}
	}
	return order
}
