package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time and work as a
// DynamoDB partition key and a SQL text primary key alike.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
