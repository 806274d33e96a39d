package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateOrderNo returns a human-readable order number:
// "MO" + UTC timestamp + 12 hex chars from a fresh UUIDv7.
// Uniqueness is enforced by the orders table; a collision at this
// entropy is treated as a fatal creation error by the caller.
func GenerateOrderNo() string {
	suffix := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	return fmt.Sprintf("MO%s%s", time.Now().UTC().Format("20060102150405"), suffix[len(suffix)-12:])
}
