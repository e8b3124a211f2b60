package study

import (
	"strings"

	"vocabdrill/internal/models"
)

// Target returns the expected answer of a word in the given direction
func Target(word models.Word, dir Direction) string {
	if dir == EnglishToKorean {
		return word.Korean
	}
	return word.English
}

// Prompt returns the side of a word shown to the learner
func Prompt(word models.Word, dir Direction) string {
	if dir == EnglishToKorean {
		return word.English
	}
	return word.Korean
}

// DeriveInputs builds an empty input buffer for target: one cell per
// character, with spaces prefilled since they are never typed.
func DeriveInputs(target string) []string {
	runes := []rune(target)
	inputs := make([]string, len(runes))
	for i, r := range runes {
		if r == ' ' {
			inputs[i] = " "
		}
	}
	return inputs
}

// CheckAnswer compares a per-character input buffer against target.
// Space positions are skipped. English answers are compared case-insensitively.
func CheckAnswer(inputs []string, target string, dir Direction) bool {
	runes := []rune(target)
	if len(inputs) != len(runes) {
		return false
	}

	var typed, want strings.Builder
	for i, r := range runes {
		if r == ' ' {
			continue
		}
		typed.WriteString(inputs[i])
		want.WriteRune(r)
	}

	if dir == KoreanToEnglish {
		return strings.ToLower(typed.String()) == strings.ToLower(want.String())
	}
	return typed.String() == want.String()
}

// NextFocus is the position that receives focus after a character is entered
// at pos. Korean syllables are composed over several keystrokes, so focus only
// moves on its own for English answers.
func NextFocus(target string, pos int, dir Direction) int {
	if dir == EnglishToKorean {
		return pos
	}
	runes := []rune(target)
	for i := pos + 1; i < len(runes); i++ {
		if runes[i] != ' ' {
			return i
		}
	}
	return pos
}

// PrevFocus is the position that receives focus after backspace on an empty cell
func PrevFocus(target string, pos int) int {
	runes := []rune(target)
	if pos > len(runes) {
		pos = len(runes)
	}
	for i := pos - 1; i >= 0; i-- {
		if runes[i] != ' ' {
			return i
		}
	}
	return pos
}

// firstRune trims a cell value down to a single character
func firstRune(value string) string {
	for _, r := range value {
		return string(r)
	}
	return ""
}
