// Package dump renders raw socket bytes for a human and parses typed hex back into bytes.
package dump

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const hexDigits = "0123456789ABCDEF"

// Hex renders b as space separated uppercase byte pairs, e.g. "70 69 6E 67".
func Hex(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out := make([]byte, 0, len(b)*3-1)
	for i, c := range b {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, hexDigits[c>>4], hexDigits[c&0x0F])
	}
	return string(out)
}

// Text decodes b as UTF-8. Each maximal ill-formed subsequence becomes a
// single U+FFFD, so a truncated "E2 82" yields one replacement, not two.
func Text(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefix(b):]
	}
	return sb.String()
}

// invalidPrefix returns the length of the ill-formed sequence at the start of b:
// a valid lead byte plus the continuation bytes that still fit it.
func invalidPrefix(b []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	need := 0
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c == 0xED:
		need, hi = 2, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		need, lo = 3, 0x90
	case c == 0xF4:
		need, hi = 3, 0x8F
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	default:
		return 1
	}

	n := 1
	for n <= need && n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		lo, hi = 0x80, 0xBF
	}
	return n
}

// ParseHex reads byte pairs such as "FF 00", "ff:00", "0xFF,0x00" or "FF00".
// A field with an odd number of digits is rejected rather than padded.
func ParseHex(s string) ([]byte, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':' || r == ','
	})

	var sb strings.Builder
	for _, f := range fields {
		if len(f) > 2 && (f[:2] == "0x" || f[:2] == "0X") {
			f = f[2:]
		}
		if len(f)%2 != 0 {
			return nil, errors.Errorf("invalid hex input %q: odd number of digits in %q", s, f)
		}
		sb.WriteString(f)
	}

	b, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex input %q", s)
	}
	return b, nil
}
