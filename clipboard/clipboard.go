package clipboard

import (
	"fmt"

	cb "github.com/atotto/clipboard"
)

// writeAll is replaced in tests; headless CI machines have no clipboard.
var writeAll = cb.WriteAll

func Copy(text string) error {
	if text == "" {
		return nil
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Entry formats a lyric word with its romanization, e.g. "밥을 (babeul)".
func Entry(word, roman string) string {
	if roman == "" || roman == word {
		return word
	}
	return word + " (" + roman + ")"
}

// CopyEntry puts Entry(word, roman) on the clipboard and returns it.
func CopyEntry(word, roman string) (string, error) {
	text := Entry(word, roman)
	return text, Copy(text)
}
