package evaluator

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// buffer holds the text of a number. The empty buffer reads as 0.
type buffer string

// appendDigit adds d, never producing a leading zero before other digits.
func (b *buffer) appendDigit(d byte) {
	if *b == "0" {
		*b = buffer(d)
		return
	}
	*b += buffer(d)
}

func (b *buffer) appendSeparator() {
	if !strings.Contains(string(*b), ".") {
		*b += "."
	}
}

func (b buffer) value() float64 {
	if b == "" {
		return 0
	}
	return parseNumber(string(b))
}

func numberBuffer(f float64) buffer {
	return buffer(formatNumber(f))
}

// numericPrefix matches the longest leading run of s that reads as a number.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseNumber reads s leniently: trailing garbage after a numeric prefix is
// ignored and text without one is NaN.
func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return f
	}

	prefix := numericPrefix.FindString(s)
	if prefix == "" {
		return math.NaN()
	}
	f, err = strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// formatNumber renders f as the shortest text that reads back as f, using
// exponent form outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + exp[:1] + digits
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
