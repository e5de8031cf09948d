package service

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identifier formats:
//
//	trip          TRIP_<unix millis, hex>_<6 base36>
//	booking       BK_<yyyymmdd>_<8 hex>
//	confirmation  CONF_<yyyymmddhhmmss>_<6 hex>
//	user          USR_<unix millis, hex>_<4 base36>
//
// The time prefix orders ids; the random suffix keeps ids created in the
// same millisecond apart.

// NewTripID returns a new trip identifier
func NewTripID(now time.Time) string {
	return fmt.Sprintf("TRIP_%s_%s",
		strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 16)),
		strings.ToUpper(randomBase36(6)))
}

// NewBookingID returns a new booking identifier
func NewBookingID(now time.Time) string {
	return fmt.Sprintf("BK_%s_%s", now.UTC().Format("20060102"), randomHex(4))
}

// NewConfirmationNumber returns a new confirmation number
func NewConfirmationNumber(now time.Time) string {
	return fmt.Sprintf("CONF_%s_%s", now.UTC().Format("20060102150405"), randomHex(3))
}

// NewUserID returns a new user identifier
func NewUserID(now time.Time) string {
	return fmt.Sprintf("USR_%s_%s", strconv.FormatInt(now.UnixMilli(), 16), randomBase36(4))
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return b
}

// randomHex returns 2*n upper-case hex digits
func randomHex(n int) string {
	return strings.ToUpper(hex.EncodeToString(randomBytes(n)))
}

// randomBase36 returns n lower-case base36 digits
func randomBase36(n int) string {
	limit := uint64(1)
	for i := 0; i < n; i++ {
		limit *= 36
	}
	v := binary.BigEndian.Uint64(randomBytes(8)) % limit

	s := strconv.FormatUint(v, 36)
	if len(s) < n {
		s = strings.Repeat("0", n-len(s)) + s
	}
	return s
}
