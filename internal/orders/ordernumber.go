package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const orderNoPrefix = "ORD"

// NewOrderNo builds a human-readable order number: the ORD prefix, the
// creation time down to the second, and six random hex characters to break
// same-second collisions.
func NewOrderNo(now time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order number suffix: %w", err)
	}
	return orderNoPrefix + now.Format("20060102150405") + strings.ToUpper(hex.EncodeToString(buf)), nil
}
