// Package hangul splits precomposed Hangul syllables into their jamo and
// puts them back together.
package hangul

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	SyllableBase  = 0xAC00
	SyllableCount = leadingCount * vowelCount * trailingCount // 11172

	leadingCount  = 19
	vowelCount    = 21
	trailingCount = 28
	blockStride   = vowelCount * trailingCount // 588
)

// Decomposition holds the slot indices of a syllable block. T is 0 when the
// syllable has no trailing consonant.
type Decomposition struct {
	L, V, T int
}

func (d Decomposition) Leading() Jamo { return LeadingJamo(d.L) }
func (d Decomposition) Vowel() Jamo   { return VowelJamo(d.V) }

func (d Decomposition) Trailing() (Jamo, bool) { return TrailingJamo(d.T) }

func (d Decomposition) valid() bool {
	return d.L >= 0 && d.L < leadingCount &&
		d.V >= 0 && d.V < vowelCount &&
		d.T >= 0 && d.T < trailingCount
}

// Char is one scalar of text. Syllable blocks carry their decomposition;
// everything else is passed through untouched.
type Char struct {
	Rune       rune
	IsSyllable bool
	Parts      Decomposition
}

func (c Char) String() string { return string(c.Rune) }

// IsSyllable reports whether r is a precomposed syllable block.
func IsSyllable(r rune) bool {
	return r >= SyllableBase && r < SyllableBase+SyllableCount
}

// Decompose splits a syllable block into slot indices. ok is false for any
// rune outside the block.
func Decompose(r rune) (d Decomposition, ok bool) {
	if !IsSyllable(r) {
		return Decomposition{}, false
	}
	idx := int(r - SyllableBase)
	return Decomposition{
		L: idx / blockStride,
		V: (idx / trailingCount) % vowelCount,
		T: idx % trailingCount,
	}, true
}

// Compose is the inverse of Decompose.
func Compose(d Decomposition) (rune, error) {
	if !d.valid() {
		return 0, fmt.Errorf("hangul: slots out of range: L=%d V=%d T=%d", d.L, d.V, d.T)
	}
	return rune(SyllableBase + d.L*blockStride + d.V*trailingCount + d.T), nil
}

func Analyze(r rune) Char {
	d, ok := Decompose(r)
	return Char{Rune: r, IsSyllable: ok, Parts: d}
}

// DecodeError reports input that is not valid UTF-8.
type DecodeError struct {
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte offset %d", e.Offset)
}

// DecodeString analyzes every scalar of s.
func DecodeString(s string) ([]Char, error) {
	chars := make([]Char, 0, utf8.RuneCountInString(s))
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return nil, &DecodeError{Offset: i}
			}
		}
		chars = append(chars, Analyze(r))
	}
	return chars, nil
}

// AnalyzeString is DecodeString for text already known to be valid.
func AnalyzeString(s string) []Char {
	chars := make([]Char, 0, len(s))
	for _, r := range s {
		chars = append(chars, Analyze(r))
	}
	return chars
}

// DecomposeString replaces every syllable block with its conjoining jamo.
func DecomposeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		d, ok := Decompose(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(d.Leading().Rune)
		b.WriteRune(d.Vowel().Rune)
		if t, ok := d.Trailing(); ok {
			b.WriteRune(t.Rune)
		}
	}
	return b.String()
}

// Class is the Unicode range a rune falls in.
type Class int

const (
	Other Class = iota
	Syllable
	ConjoiningJamo
	CompatJamo
	JamoExtA
	JamoExtB
)

func (c Class) String() string {
	switch c {
	case Syllable:
		return "Syllables"
	case ConjoiningJamo:
		return "Jamo"
	case CompatJamo:
		return "CompatJamo"
	case JamoExtA:
		return "JamoExtA"
	case JamoExtB:
		return "JamoExtB"
	}
	return "Other"
}

func ClassOf(r rune) Class {
	switch {
	case r >= 0xAC00 && r <= 0xD7AF:
		return Syllable
	case r >= 0x1100 && r <= 0x11FF:
		return ConjoiningJamo
	case r >= 0x3130 && r <= 0x318F:
		return CompatJamo
	case r >= 0xA960 && r <= 0xA97F:
		return JamoExtA
	case r >= 0xD7B0 && r <= 0xD7FF:
		return JamoExtB
	}
	return Other
}
