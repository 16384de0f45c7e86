package geo

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// ParseCoordinate extracts a decimal-degree value from a cell. It
// accepts plain finite numbers, degrees-minutes-seconds text with an
// optional hemisphere letter (S/W negate), and loose decimal text with
// comma decimal separators and stray non-numeric characters. Returns
// ok=false for anything unparseable; such values are excluded from
// both band scoring and the final index.
func ParseCoordinate(c sitedata.Cell) (float64, bool) {
	switch c.Kind() {
	case sitedata.KindNumber:
		return c.AsNumber(), true
	case sitedata.KindText:
		return parseCoordText(c.AsText())
	default:
		return 0, false
	}
}

var numberGroup = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

func parseCoordText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	sign := 1.0
	hemisphere := false
	if n := len(s); n > 0 {
		switch s[n-1] & 0xDF { // upper-case ASCII letter
		case 'N', 'E':
			hemisphere = true
			s = strings.TrimSpace(s[:n-1])
		case 'S', 'W':
			hemisphere = true
			sign = -1
			s = strings.TrimSpace(s[:n-1])
		}
	}
	if len(s) > 0 {
		switch s[0] & 0xDF {
		case 'N', 'E':
			hemisphere = true
			s = strings.TrimSpace(s[1:])
		case 'S', 'W':
			hemisphere = true
			sign = -1
			s = strings.TrimSpace(s[1:])
		}
	}

	groups := numberGroup.FindAllString(s, -1)
	if len(groups) == 0 {
		return 0, false
	}

	// Multiple number groups with DMS punctuation or a hemisphere
	// letter read as degrees, minutes, seconds.
	if len(groups) >= 2 && (hemisphere || strings.ContainsAny(s, "°'\"")) {
		deg := looseFloat(groups[0])
		min := looseFloat(groups[1])
		sec := 0.0
		if len(groups) >= 3 {
			sec = looseFloat(groups[2])
		}
		if deg < 0 {
			deg = -deg
			sign = -sign
		}
		v := sign * (deg + min/60 + sec/3600)
		return v, isFinite(v)
	}

	v := sign * looseDecimal(s)
	return v, isFinite(v) && looseDecimalOK(s)
}

// looseDecimal strips everything except digits, sign, and separators,
// normalizes comma to dot, and parses. Returns 0 on failure.
func looseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(stripNonNumeric(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func looseDecimalOK(s string) bool {
	_, err := strconv.ParseFloat(stripNonNumeric(s), 64)
	return err == nil
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	return b.String()
}

func looseFloat(group string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(group, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
