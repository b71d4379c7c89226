package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. Used as the jti of verification tickets so log
// lines for one ticket can be correlated and sorted by issue time.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
