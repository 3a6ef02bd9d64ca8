// Package ids generates prefixed identifiers for documents, sections and
// blocks.
package ids

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix is used when New is called with an empty prefix.
const DefaultPrefix = "id"

// suffixLen is the number of base-36 characters after the prefix.
const suffixLen = 12

// New returns "<prefix>_<suffix>" where suffix is 12 lowercase base-36
// characters drawn from a random UUID. Ids are unique within a process
// lifetime for all practical purposes.
func New(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	u := uuid.New()
	s := new(big.Int).SetBytes(u[:]).Text(36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return prefix + "_" + s[len(s)-suffixLen:]
}
