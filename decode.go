package main

import (
	"fmt"
	"io"
	"strings"

	"hangulfun/hangul"
)

func runDecode(w io.Writer, s string) error {
	chars, err := hangul.DecodeString(s)
	if err != nil {
		return err
	}
	for _, c := range chars {
		fmt.Fprintln(w, describeChar(c))
	}
	decomposed := hangul.DecomposeString(s)
	fmt.Fprintf(w, "decomposed: %s (original length=%d, decomposed length=%d)\n", decomposed, len(s), len(decomposed))
	fmt.Fprintf(w, "romanized: %s\n", hangul.RomanizeChars(chars))
	return nil
}

// describeChar renders one scalar, e.g.
// "ch=밥 (0xbc25) Syllables initial=ㅂ (0x1107) medial=ㅏ (0x1161) final=ㅂ (0x11b8)".
func describeChar(c hangul.Char) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ch=%c (%#x) %s", c.Rune, c.Rune, hangul.ClassOf(c.Rune))
	if !c.IsSyllable {
		b.WriteString(" passthrough")
		return b.String()
	}
	jamo := []hangul.Jamo{c.Parts.Leading(), c.Parts.Vowel()}
	if t, ok := c.Parts.Trailing(); ok {
		jamo = append(jamo, t)
	}
	for _, j := range jamo {
		fmt.Fprintf(&b, " %s=%c (%#x)", j.Position, j.Compat, j.Rune)
	}
	return b.String()
}
