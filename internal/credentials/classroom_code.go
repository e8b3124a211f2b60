package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Word lists for generating easy-to-read classroom join codes
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "calm", "swift", "clever", "jolly",
	"mighty", "gentle", "wild", "lucky", "magic", "bold", "cosmic", "eager",
	"merry", "noble", "quick", "royal", "snappy", "kind", "lively", "misty",
}

var nouns = []string{
	"tiger", "magpie", "crane", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "pine", "lotus", "river", "maple", "comet", "harbor",
	"island", "lantern", "mountain", "garden", "willow", "thunder", "meadow", "cloud",
}

var classroomCodePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-\d{4}$`)

// GenerateClassroomCode generates a random code in the format "adjective-noun-NNNN"
func GenerateClassroomCode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	num, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%04d", adjective, noun, num.Int64()), nil
}

// ValidClassroomCode reports whether code has the generated shape
func ValidClassroomCode(code string) bool {
	return classroomCodePattern.MatchString(code)
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
