// Package ticketcode generates and validates human-facing ticket codes
// of the form FM-<year>-<4 digits>.
package ticketcode

import (
	"fmt"
	"math/rand/v2"
	"regexp"
)

const (
	suffixMin = 1000
	suffixMax = 9999
)

// Pattern is the public shape of a ticket code. Any UI or bot parsing
// codes must accept exactly this form.
var Pattern = regexp.MustCompile(`^FM-\d{4}-\d{4}$`)

// Generate returns a candidate code for the given year. Uniqueness is
// not guaranteed by construction; callers must check the store and
// retry on collision.
func Generate(year int) string {
	suffix := suffixMin + rand.IntN(suffixMax-suffixMin+1)
	return fmt.Sprintf("FM-%d-%d", year, suffix)
}

// Valid reports whether s is a well-formed ticket code.
func Valid(s string) bool {
	return Pattern.MatchString(s)
}
