package primitives

import (
	"fmt"
	"strings"
)

type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
	NotEqualsBracket // alternative notation for NotEqual
	Like
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="

	case LessThan:
		return "<"

	case GreaterThan:
		return ">"

	case LessThanOrEqual:
		return "<="

	case GreaterThanOrEqual:
		return ">="

	case NotEqual:
		return "!="

	case NotEqualsBracket:
		return "<>"

	case Like:
		return "LIKE"

	default:
		return "UNKNOWN"
	}
}

// Holds reports whether a three-way comparison result c satisfies p.
// Like is not expressible as an ordering and always reports false.
func (p Predicate) Holds(c int) bool {
	switch p {
	case Equals:
		return c == 0
	case LessThan:
		return c < 0
	case GreaterThan:
		return c > 0
	case LessThanOrEqual:
		return c <= 0
	case GreaterThanOrEqual:
		return c >= 0
	case NotEqual, NotEqualsBracket:
		return c != 0
	default:
		return false
	}
}

// ParsePredicate accepts the operator spellings produced by String, plus
// "==" and the case-insensitive word "like".
func ParsePredicate(s string) (Predicate, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "=", "==":
		return Equals, nil
	case "<":
		return LessThan, nil
	case ">":
		return GreaterThan, nil
	case "<=":
		return LessThanOrEqual, nil
	case ">=":
		return GreaterThanOrEqual, nil
	case "!=":
		return NotEqual, nil
	case "<>":
		return NotEqualsBracket, nil
	case "LIKE":
		return Like, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q", s)
	}
}
