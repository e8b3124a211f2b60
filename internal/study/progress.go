package study

import "math"

// ProgressPercent is the rounded share of words reached, counting the current one
func ProgressPercent(index, total int) int {
	if total <= 0 {
		return 0
	}
	return percent(index+1, total)
}

// Summary is the result shown when a session completes
type Summary struct {
	Total          int `json:"total"`
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
	CorrectPercent int `json:"correctPercent"`
}

// TypedSummary summarizes a typed session: every word not left incorrect counts as correct
func TypedSummary(total, incorrect int) Summary {
	correct := total - incorrect
	if correct < 0 {
		correct = 0
	}
	return Summary{
		Total:          total,
		Correct:        correct,
		Incorrect:      total - correct,
		CorrectPercent: percent(correct, total),
	}
}

// FlashcardSummary summarizes a flashcard session from its known/unknown partition
func FlashcardSummary(total, known, unknown int) Summary {
	return Summary{
		Total:          total,
		Correct:        known,
		Incorrect:      unknown,
		CorrectPercent: percent(known, total),
	}
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
