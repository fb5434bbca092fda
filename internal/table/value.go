package table

import (
	"strconv"
	"strings"
)

// Value is a single cell: either a number or a category label.
type Value struct {
	num   float64
	str   string
	isNum bool
}

// Num returns a numeric Value.
func Num(f float64) Value {
	return Value{num: f, isNum: true}
}

// Str returns a categorical Value.
func Str(s string) Value {
	return Value{str: s}
}

// ParseValue returns a numeric Value when s parses as a float,
// otherwise a categorical one. Surrounding whitespace is ignored.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(f)
	}
	return Str(s)
}

// IsNum reports whether v holds a number.
func (v Value) IsNum() bool { return v.isNum }

// Float returns the numeric content of v.
func (v Value) Float() (float64, bool) {
	if !v.isNum {
		return 0, false
	}
	return v.num, true
}

// String renders numbers without trailing zeros and categories as-is.
func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Equal compares two values. A number never equals a category.
func (v Value) Equal(o Value) bool {
	if v.isNum != o.isNum {
		return false
	}
	if v.isNum {
		return v.num == o.num
	}
	return v.str == o.str
}
