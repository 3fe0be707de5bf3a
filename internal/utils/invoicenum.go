package utils

import (
	"crypto/rand"
	"fmt"
	"time"
)

const suffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

// GenerateInvoiceNumber returns a number of the form INV-YYYYMMDD-XXXXXX
// where the suffix is 6 random uppercase characters. Uniqueness is enforced
// by the invoice_number unique index; callers re-roll on collision.
func GenerateInvoiceNumber(issued time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to a time-derived suffix.
		nano := time.Now().UnixNano()
		for i := range buf {
			buf[i] = suffixAlphabet[nano%int64(len(suffixAlphabet))]
			nano /= int64(len(suffixAlphabet))
		}
	} else {
		for i, b := range buf {
			buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
		}
	}
	return fmt.Sprintf("INV-%s-%s", issued.Format("20060102"), string(buf))
}
