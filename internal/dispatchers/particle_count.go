package dispatchers

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinParticles = 2
	MaxParticles = 200000
)

// ParseParticleCount coerces raw to an integer and reports whether it is a
// valid particle count. The coerced value is returned even when invalid.
func ParseParticleCount(raw string) (int, bool) {
	n := CoerceInt(raw)
	return n, IsValidParticleCount(n)
}

// IsValidParticleCount reports whether n lies in [MinParticles, MaxParticles].
func IsValidParticleCount(n int) bool {
	return n > MinParticles-1 && n < MaxParticles+1
}

// CoerceInt converts the leading numeric prefix of s to an integer, or 0 when
// there is none. The prefix is optional whitespace, an optional sign, digits
// with an optional fraction and an optional exponent ("12abc" -> 12,
// "2.9" -> 2, "1e3" -> 1000, "abc" -> 0). Fractions are truncated toward
// zero and values beyond the int range saturate.
func CoerceInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	prefix, isInteger := numericPrefix(s)
	if prefix == "" {
		return 0
	}

	if isInteger {
		// the only possible error is ErrRange, and n is saturated then
		n, _ := strconv.ParseInt(prefix, 10, 0)
		return int(n)
	}

	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !isRangeError(err) {
		return 0
	}
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

// numericPrefix returns the longest leading numeric string of s and whether
// it is a plain integer (no fraction or exponent).
func numericPrefix(s string) (string, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	intDigits := countDigits(s[i:])
	i += intDigits

	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = countDigits(s[i+1:])
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return "", true
	}
	isInteger := !strings.Contains(s[:i], ".")

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if expDigits := countDigits(s[j:]); expDigits > 0 {
			i = j + expDigits
			isInteger = false
		}
	}

	return s[:i], isInteger
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}
