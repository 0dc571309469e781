package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Word lists for readable temporary passwords handed to new therapists
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "gentle", "merry", "noble", "quick", "royal", "bold", "cosmic",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "rocket", "wizard", "comet", "thunder", "harbor", "meadow",
}

// GenerateTemporaryPassword returns a password like "Brave-Tiger-4821".
// It always satisfies the minimum password length.
func GenerateTemporaryPassword() (string, error) {
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

	return fmt.Sprintf("%s-%s-%04d", capitalize(adjective), capitalize(noun), num.Int64()), nil
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

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
