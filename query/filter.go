package query

import (
	"strings"
)

// Evaluate reports whether row satisfies the condition. A field path that
// does not resolve, or resolves to a nested row, never satisfies it.
func (c *Condition) Evaluate(row Row) bool {
	segments := c.segments
	if segments == nil {
		segments = strings.Split(c.Field, ".")
	}

	raw, ok := resolveSegments(row, segments)
	if !ok {
		return false
	}
	value, ok := normalize(raw)
	if !ok {
		return false
	}

	var match bool
	switch c.Comparison {
	case TokenLike:
		match = c.matchLike(raw)
	case TokenIn:
		for _, member := range c.Values {
			if compareValues(value, member) == 0 {
				match = true
				break
			}
		}
	case TokenBetween:
		match = compareValues(value, c.Value1) >= 0 && compareValues(value, c.Value2) <= 0
	default:
		return compare(value, c.Comparison, c.Value1)
	}

	if c.Negate {
		return !match
	}
	return match
}

// matchLike tests the raw field text against the LIKE pattern
func (c *Condition) matchLike(raw Value) bool {
	pattern := c.pattern
	if pattern == nil {
		compiled, err := compileLikePattern(c.Value1.Text())
		if err != nil {
			return false
		}
		pattern = compiled
	}
	return pattern.MatchString(raw.Text())
}

// Matches reports whether row satisfies every condition. An empty list
// always matches.
func Matches(row Row, conditions []Condition) bool {
	for i := range conditions {
		if !conditions[i].Evaluate(row) {
			return false
		}
	}
	return true
}

// ApplyFilter returns the rows that satisfy every condition, in order
func ApplyFilter(rows []Row, conditions []Condition) []Row {
	if len(conditions) == 0 {
		return rows
	}

	filtered := make([]Row, 0)
	for _, row := range rows {
		if Matches(row, conditions) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// compare compares two normalized values using the given operator
func compare(left Value, operator TokenType, right Value) bool {
	leftNum, leftIsNum := left.AsNumber()
	rightNum, rightIsNum := right.AsNumber()

	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, operator, rightNum)
	}

	return compareStrings(strings.ToLower(left.Text()), operator, strings.ToLower(right.Text()))
}

// compareValues orders two normalized values: numerically when both are
// numbers, otherwise by their lowercased string forms.
func compareValues(a, b Value) int {
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
	return strings.Compare(strings.ToLower(a.Text()), strings.ToLower(b.Text()))
}

// compareNumbers compares two numbers
func compareNumbers(left float64, operator TokenType, right float64) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings lexicographically
func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}
