package study

import (
	"fmt"
	"strings"

	"vocabdrill/internal/models"
)

const (
	hangulFirst = 0xAC00
	hangulLast  = 0xD7A3
	// syllables sharing one leading consonant: 21 vowels * 28 finals
	hangulInitialSpan = 588
)

var initialConsonants = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// InitialConsonants replaces every Hangul syllable with its leading consonant.
// Anything else is kept as is.
func InitialConsonants(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= hangulFirst && r <= hangulLast {
			b.WriteRune(initialConsonants[(r-hangulFirst)/hangulInitialSpan])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LetterHint shows the first letter, an underscore for every other letter and
// the total length, e.g. "c__ (3)".
func LetterHint(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	return fmt.Sprintf("%c%s (%d)", runes[0], strings.Repeat("_", len(runes)-1), len(runes))
}

// Hint returns the hint for the answer of word in the given direction
func Hint(word models.Word, dir Direction) string {
	if dir == EnglishToKorean {
		return InitialConsonants(word.Korean)
	}
	return LetterHint(word.English)
}
