package sitedata

import (
	"math"
	"strconv"
	"strings"
)

// CellKind tags the dynamic type of a spreadsheet cell.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindBool
)

// Cell is one spreadsheet cell value. Exports are user-maintained and
// the same column can carry text in one row and a number in the next,
// so every cell keeps its decoded type and the coercion methods below
// pattern-match on it instead of guessing.
type Cell struct {
	kind CellKind
	num  float64
	text string
	b    bool
}

// Empty is the zero cell, used for blank and missing values.
var Empty = Cell{}

// Number constructs a numeric cell.
func Number(v float64) Cell { return Cell{kind: KindNumber, num: v} }

// Text constructs a text cell.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Bool constructs a boolean cell.
func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }

// Kind returns the cell's tag.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell is blank. Whitespace-only text
// counts as blank.
func (c Cell) IsEmpty() bool {
	if c.kind == KindEmpty {
		return true
	}
	return c.kind == KindText && strings.TrimSpace(c.text) == ""
}

// AsNumber coerces the cell to a float64. Blank, unparseable, and
// non-finite values all become 0; this never fails.
func (c Cell) AsNumber() float64 {
	switch c.kind {
	case KindNumber:
		if math.IsNaN(c.num) || math.IsInf(c.num, 0) {
			return 0
		}
		return c.num
	case KindBool:
		if c.b {
			return 1
		}
		return 0
	case KindText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	default:
		return 0
	}
}

// AsText coerces the cell to a trimmed string. Blank cells yield "".
func (c Cell) AsText() string {
	switch c.kind {
	case KindText:
		return strings.TrimSpace(c.text)
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		if c.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// AsBool coerces the cell to a boolean. True for literal true, numeric
// 1, and case-insensitive "yes"/"true"/"1"; everything else is false.
// QC flag columns arrive in all three representations depending on who
// last edited the sheet.
func (c Cell) AsBool() bool {
	switch c.kind {
	case KindBool:
		return c.b
	case KindNumber:
		return c.num == 1
	case KindText:
		switch strings.ToLower(strings.TrimSpace(c.text)) {
		case "yes", "true", "1":
			return true
		}
		return false
	default:
		return false
	}
}
