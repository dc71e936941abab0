package hangul

import "strings"

// Romanize transliterates s, linking a final consonant into a following
// syllable that starts with silent ㅇ ("밥을" -> "babeul").
func Romanize(s string) string {
	return RomanizeChars(AnalyzeString(s))
}

func RomanizeChars(chars []Char) string {
	var b strings.Builder
	rieulCarry := false
	for i, c := range chars {
		if !c.IsSyllable {
			b.WriteRune(c.Rune)
			rieulCarry = false
			continue
		}
		d := c.Parts
		if rieulCarry && d.L == leadingRieul {
			b.WriteString("l")
		} else {
			b.WriteString(d.Leading().Roman)
		}
		rieulCarry = false
		b.WriteString(d.Vowel().Roman)

		t, ok := d.Trailing()
		if !ok {
			continue
		}
		var next *Char
		if i+1 < len(chars) && chars[i+1].IsSyllable {
			next = &chars[i+1]
		}
		switch {
		case next != nil && next.Parts.L == ieung:
			b.WriteString(t.Linked)
		case next != nil && d.T == trailingRieul && next.Parts.L == leadingRieul:
			b.WriteString(t.Roman)
			rieulCarry = true
		default:
			b.WriteString(t.Roman)
		}
	}
	return b.String()
}
