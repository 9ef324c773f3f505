package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// IdempotencyKeyBucket is the width of the time bucket folded into derived
// idempotency keys. Two logically identical requests inside the same bucket
// collapse into one operation; requests in different buckets are treated as
// distinct operations.
const IdempotencyKeyBucket = time.Minute

// DeriveIdempotencyKey builds a deterministic idempotency key from the salient
// parameters of an operation plus a coarse time bucket. It is used when the
// caller did not supply an explicit Idempotency-Key header, so that accidental
// double submissions (double-clicks, gateway retries) still collide.
func DeriveIdempotencyKey(at time.Time, parts ...string) string {
	bucket := at.UTC().Truncate(IdempotencyKeyBucket)
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "|")))
	h.Write([]byte("|"))
	h.Write([]byte(bucket.Format(time.RFC3339)))
	return hex.EncodeToString(h.Sum(nil))
}
