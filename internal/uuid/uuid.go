// Package uuid produces the string identifiers used for every row.
package uuid

import (
	"strings"

	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7, falling back to a random v4 when the
// clock source fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	return googleuuid.Validate(s) == nil
}

// reimbursementNamespace scopes name-based IDs generated for reimbursements.
var reimbursementNamespace = googleuuid.MustParse("8f2c1b7e-4d0a-5e8b-9c3f-6a1d2e4b7c90")

// NewFromName returns a deterministic UUIDv5 for the given name parts. The
// same parts always produce the same ID.
func NewFromName(parts ...string) string {
	return googleuuid.NewSHA1(reimbursementNamespace, []byte(strings.Join(parts, "|"))).String()
}
