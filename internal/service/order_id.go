package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const orderIDPrefix = "JP"

var jakartaLoc *time.Location

func init() {
	var err error
	jakartaLoc, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		jakartaLoc = time.FixedZone("WIB", 7*60*60)
	}
}

// NewOrderID returns JP-YYMMDD-xxxxxxxx with the date in Jakarta time and
// four random bytes hex encoded.
func NewOrderID(now time.Time) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order id entropy: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", orderIDPrefix, now.In(jakartaLoc).Format("060102"), hex.EncodeToString(buf)), nil
}
