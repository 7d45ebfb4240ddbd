// Package util holds small helpers shared by the CLI and the wall.
package util

import "strconv"

// Quantify formats count followed by the singular or plural noun.
func Quantify(count int, singular, plural string) string {
	noun := plural
	if count == 1 || count == -1 {
		noun = singular
	}
	return strconv.Itoa(count) + " " + noun
}
