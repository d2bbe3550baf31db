package utils // helper functions for identifiers, tokens and hashing

import (
	"crypto/rand"
	"fmt"
	"time"
)

const bookingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingID returns an identifier of the form BK<unix millis><6 random
// characters>. The timestamp keeps ids roughly sortable and the random
// suffix makes collisions negligible; the store still enforces uniqueness
// on the column so an unlucky collision surfaces as an insert error, never
// a silent overwrite.
func NewBookingID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = bookingIDAlphabet[int(b)%len(bookingIDAlphabet)]
	}
	return fmt.Sprintf("BK%d%s", time.Now().UnixMilli(), buf), nil
}
