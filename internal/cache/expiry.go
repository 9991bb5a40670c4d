package cache

import (
	"strings"
	"time"
)

// Expiry represents an optional future deadline for a cache entry. The zero
// value is "never expires".
type Expiry struct {
	deadline time.Time
	set      bool
}

// NeverExpire returns an Expiry that never reports as expired.
func NeverExpire() Expiry {
	return Expiry{}
}

// At returns an Expiry that fires at the given absolute deadline.
func At(deadline time.Time) Expiry {
	return Expiry{deadline: deadline, set: true}
}

// After returns an Expiry relative to now. A non-positive duration yields an
// already-expired Expiry.
func After(d time.Duration) Expiry {
	return At(time.Now().Add(d))
}

// FromMillis interprets millis as a relative duration from now, matching the
// protocol's raw-milliseconds SET form.
func FromMillis(millis int64) Expiry {
	return After(time.Duration(millis) * time.Millisecond)
}

// ExpiryFormat is the wire tag accompanying a SET expiry amount.
type ExpiryFormat int

const (
	// FormatUnknown means the tag didn't match EX or PX; SET falls back to
	// treating the amount as a bare millisecond count.
	FormatUnknown ExpiryFormat = iota
	FormatEX
	FormatPX
)

// ParseFormat case-insensitively maps a wire tag to an ExpiryFormat.
func ParseFormat(tag string) ExpiryFormat {
	switch strings.ToUpper(tag) {
	case "EX":
		return FormatEX
	case "PX":
		return FormatPX
	default:
		return FormatUnknown
	}
}

// FromAmountFormat builds an Expiry from a (amount, format) pair the way
// SET's optional trailing arguments do: EX is seconds, PX is milliseconds,
// an unrecognized format yields never-expires.
func FromAmountFormat(amount int64, format ExpiryFormat) Expiry {
	switch format {
	case FormatEX:
		return After(time.Duration(amount) * time.Second)
	case FormatPX:
		return After(time.Duration(amount) * time.Millisecond)
	default:
		return NeverExpire()
	}
}

// IsExpired reports whether the deadline has passed. Never-expiring entries
// always report false.
func (e Expiry) IsExpired() bool {
	if !e.set {
		return false
	}
	return e.deadline.Before(time.Now())
}

// Remaining returns the time left before expiration and true, or false if
// the Expiry never expires. An already-past deadline returns a zero
// duration, never negative.
func (e Expiry) Remaining() (time.Duration, bool) {
	if !e.set {
		return 0, false
	}
	remaining := time.Until(e.deadline)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
