package canon

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the content-addressed identity of a billed service
// from its canonicalized (date, candidate id, amount, description) tuple.
// Candidate name is deliberately excluded: names parse too inconsistently
// across vendor layouts to participate in identity.
//
// The digest is md5: a deduplication key, not a security boundary.
func Fingerprint(serviceDate, candidateID string, amount float64, description string) string {
	raw := strings.Join([]string{
		NormalizeDate(serviceDate),
		strings.TrimSpace(candidateID),
		FormatAmount(amount),
		NormalizeDescription(description),
	}, "|")
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
