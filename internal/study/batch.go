package study

import "vocabdrill/internal/models"

// BatchAll selects every word
const BatchAll = 0

// BatchSizes are the batch sizes offered to the learner, besides "all"
var BatchSizes = []int{5, 10, 15, 20}

// BatchOption is one entry of the batch-size picker
type BatchOption struct {
	Size    int  `json:"size"`
	All     bool `json:"all"`
	Batches int  `json:"batches"`
}

// Partition returns the working subset: the first size words, or all of them
// when size is BatchAll or not smaller than the list.
func Partition(words []models.Word, size int) []models.Word {
	if size <= 0 || size >= len(words) {
		return words
	}
	return words[:size]
}

// BatchCount is the number of batches of the given size the list splits into.
// Only the first batch is ever studied; the count is shown as a hint.
func BatchCount(total, size int) int {
	if total <= 0 {
		return 0
	}
	if size <= 0 || size >= total {
		return 1
	}
	return (total + size - 1) / size
}

// BatchOptions lists the sizes that make sense for a list of total words
func BatchOptions(total int) []BatchOption {
	var options []BatchOption
	for _, size := range BatchSizes {
		if size >= total {
			break
		}
		options = append(options, BatchOption{Size: size, Batches: BatchCount(total, size)})
	}
	return append(options, BatchOption{Size: total, All: true, Batches: BatchCount(total, total)})
}
