package hangul

// Position is the slot a jamo occupies inside a syllable block.
type Position int

const (
	Leading Position = iota
	Vowel
	Trailing
)

func (p Position) String() string {
	switch p {
	case Leading:
		return "initial"
	case Vowel:
		return "medial"
	case Trailing:
		return "final"
	}
	return "unknown"
}

// Jamo describes one consonant or vowel letter of a syllable.
type Jamo struct {
	Position Position
	Index    int
	Rune     rune   // conjoining form (U+1100 block)
	Compat   rune   // compatibility form (U+3130 block), what people type and read
	Roman    string // romanization in word-final or syllable-initial position
	Linked   string // trailing only: romanization when the next syllable starts with silent ㅇ
	Hint     string
}

const (
	leadingBase  = 0x1100
	vowelBase    = 0x1161
	trailingBase = 0x11A7
)

var leadingTable = [leadingCount]struct {
	compat rune
	roman  string
	hint   string
}{
	{'ㄱ', "g", "between 'g' and 'k'"},
	{'ㄲ', "kk", "tense 'k', no breath"},
	{'ㄴ', "n", "'n' as in 'no'"},
	{'ㄷ', "d", "between 'd' and 't'"},
	{'ㄸ', "tt", "tense 't', no breath"},
	{'ㄹ', "r", "light tap, between 'r' and 'l'"},
	{'ㅁ', "m", "'m' as in 'moon'"},
	{'ㅂ', "b", "between 'b' and 'p'"},
	{'ㅃ', "pp", "tense 'p', no breath"},
	{'ㅅ', "s", "'s' as in 'sun'"},
	{'ㅆ', "ss", "tense 's'"},
	{'ㅇ', "", "silent at the start of a syllable"},
	{'ㅈ', "j", "between 'j' and 'ch'"},
	{'ㅉ', "jj", "tense 'j', no breath"},
	{'ㅊ', "ch", "'ch' with a puff of air"},
	{'ㅋ', "k", "'k' with a puff of air"},
	{'ㅌ', "t", "'t' with a puff of air"},
	{'ㅍ', "p", "'p' with a puff of air"},
	{'ㅎ', "h", "'h' as in 'hat'"},
}

var vowelTable = [vowelCount]struct {
	compat rune
	roman  string
	hint   string
}{
	{'ㅏ', "a", "'a' as in 'father'"},
	{'ㅐ', "ae", "'a' as in 'sad'"},
	{'ㅑ', "ya", "'ya' as in 'yard'"},
	{'ㅒ', "yae", "'ya' as in 'yak'"},
	{'ㅓ', "eo", "'u' as in 'bus'"},
	{'ㅔ', "e", "'e' as in 'bed'"},
	{'ㅕ', "yeo", "'yu' as in 'young'"},
	{'ㅖ', "ye", "'ye' as in 'yes'"},
	{'ㅗ', "o", "'o' as in 'ago'"},
	{'ㅘ', "wa", "'wa' as in 'wander'"},
	{'ㅙ', "wae", "'we' as in 'wedding'"},
	{'ㅚ', "oe", "'we' as in 'wet'"},
	{'ㅛ', "yo", "'yo' as in 'yoga'"},
	{'ㅜ', "u", "'oo' as in 'food'"},
	{'ㅝ', "wo", "'wo' as in 'wonder'"},
	{'ㅞ', "we", "'we' as in 'web'"},
	{'ㅟ', "wi", "'wee' as in 'week'"},
	{'ㅠ', "yu", "'you' as in 'youth'"},
	{'ㅡ', "eu", "'uh' with teeth close"},
	{'ㅢ', "ui", "ㅡ gliding into ㅣ"},
	{'ㅣ', "i", "'ee' as in 'feet'"},
}

// Index 0 is "no trailing consonant".
var trailingTable = [trailingCount]struct {
	compat rune
	roman  string
	linked string
}{
	{0, "", ""},
	{'ㄱ', "k", "g"},
	{'ㄲ', "k", "kk"},
	{'ㄳ', "k", "gs"},
	{'ㄴ', "n", "n"},
	{'ㄵ', "n", "nj"},
	{'ㄶ', "n", "n"},
	{'ㄷ', "t", "d"},
	{'ㄹ', "l", "r"},
	{'ㄺ', "k", "lg"},
	{'ㄻ', "m", "lm"},
	{'ㄼ', "l", "lb"},
	{'ㄽ', "l", "ls"},
	{'ㄾ', "l", "lt"},
	{'ㄿ', "p", "lp"},
	{'ㅀ', "l", "r"},
	{'ㅁ', "m", "m"},
	{'ㅂ', "p", "b"},
	{'ㅄ', "p", "bs"},
	{'ㅅ', "t", "s"},
	{'ㅆ', "t", "ss"},
	{'ㅇ', "ng", "ng"},
	{'ㅈ', "t", "j"},
	{'ㅊ', "t", "ch"},
	{'ㅋ', "k", "k"},
	{'ㅌ', "t", "t"},
	{'ㅍ', "p", "p"},
	{'ㅎ', "t", ""},
}

const (
	ieung         = 11 // leading ㅇ
	leadingRieul  = 5
	trailingRieul = 8
)

// LeadingJamo returns the table entry for leading slot i. It panics if i is out of range.
func LeadingJamo(i int) Jamo {
	e := leadingTable[i]
	return Jamo{Position: Leading, Index: i, Rune: rune(leadingBase + i), Compat: e.compat, Roman: e.roman, Hint: e.hint}
}

// VowelJamo returns the table entry for vowel slot i. It panics if i is out of range.
func VowelJamo(i int) Jamo {
	e := vowelTable[i]
	return Jamo{Position: Vowel, Index: i, Rune: rune(vowelBase + i), Compat: e.compat, Roman: e.roman, Hint: e.hint}
}

// TrailingJamo returns the table entry for trailing slot i (1..27). Slot 0 has no jamo.
func TrailingJamo(i int) (Jamo, bool) {
	if i == 0 {
		return Jamo{}, false
	}
	e := trailingTable[i]
	return Jamo{Position: Trailing, Index: i, Rune: rune(trailingBase + i), Compat: e.compat, Roman: e.roman, Linked: e.linked}, true
}
