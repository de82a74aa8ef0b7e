package evaluator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnknownKey is returned when text does not name a keypad key.
var ErrUnknownKey = errors.New("unknown key")

// Key is a single keypad input.
type Key int

const (
	Key0 Key = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyDecimal
	KeyAdd
	KeySubtract
	KeyMultiply
	KeyDivide
	KeyEquals
	KeyClear
	KeySqrt
)

var keyNames = map[string]Key{
	".":     KeyDecimal,
	",":     KeyDecimal,
	"+":     KeyAdd,
	"-":     KeySubtract,
	"−":     KeySubtract,
	"*":     KeyMultiply,
	"x":     KeyMultiply,
	"×":     KeyMultiply,
	"/":     KeyDivide,
	"÷":     KeyDivide,
	"=":     KeyEquals,
	"c":     KeyClear,
	"ac":    KeyClear,
	"clear": KeyClear,
	"sqrt":  KeySqrt,
	"√":     KeySqrt,
}

// ParseKey maps the text of a single key to a Key. Matching ignores case.
func ParseKey(s string) (Key, error) {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Key0 + Key(s[0]-'0'), nil
	}
	if k, ok := keyNames[strings.ToLower(s)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// ParseKeys splits a line of input into keys. Tokens are separated by
// whitespace; a token that is not a key name on its own is read one
// character at a time, so "12+3=" and "1 2 + 3 =" are equivalent.
func ParseKeys(line string) ([]Key, error) {
	var keys []Key
	for _, tok := range strings.Fields(line) {
		if k, err := ParseKey(tok); err == nil {
			keys = append(keys, k)
			continue
		}
		for i := 0; i < len(tok); {
			r, size := utf8.DecodeRuneInString(tok[i:])
			k, err := ParseKey(string(r))
			if err != nil {
				return nil, fmt.Errorf("token %q: %w", tok, err)
			}
			keys = append(keys, k)
			i += size
		}
	}
	return keys, nil
}

// IsDigit reports whether k is one of Key0 through Key9.
func (k Key) IsDigit() bool {
	return k >= Key0 && k <= Key9
}

// Class groups keys for metrics: digit, decimal, operator, equals, clear or
// sqrt.
func (k Key) Class() string {
	switch {
	case k.IsDigit():
		return "digit"
	case k == KeyDecimal:
		return "decimal"
	case k >= KeyAdd && k <= KeyDivide:
		return "operator"
	case k == KeyEquals:
		return "equals"
	case k == KeyClear:
		return "clear"
	case k == KeySqrt:
		return "sqrt"
	default:
		return "unknown"
	}
}

func (k Key) String() string {
	switch {
	case k.IsDigit():
		return string(rune('0' + k))
	case k == KeyDecimal:
		return "."
	case k == KeyAdd:
		return "+"
	case k == KeySubtract:
		return "-"
	case k == KeyMultiply:
		return "*"
	case k == KeyDivide:
		return "/"
	case k == KeyEquals:
		return "="
	case k == KeyClear:
		return "C"
	case k == KeySqrt:
		return "sqrt"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}
