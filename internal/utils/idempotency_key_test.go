package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/courierly/wallet-backend/internal/utils"
)

func TestDeriveIdempotencyKey_SameBucketCollides(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 30, 5, 0, time.UTC)
	later := base.Add(40 * time.Second) // still inside the 12:30 bucket

	k1 := utils.DeriveIdempotencyKey(base, "user-1", "acct-1", "2.5")
	k2 := utils.DeriveIdempotencyKey(later, "user-1", "acct-1", "2.5")

	assert.Equal(t, k1, k2)
}

func TestDeriveIdempotencyKey_DifferentBucketDiffers(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 30, 55, 0, time.UTC)
	next := base.Add(10 * time.Second) // crosses into the 12:31 bucket

	k1 := utils.DeriveIdempotencyKey(base, "user-1", "acct-1", "2.5")
	k2 := utils.DeriveIdempotencyKey(next, "user-1", "acct-1", "2.5")

	assert.NotEqual(t, k1, k2)
}

func TestDeriveIdempotencyKey_SensitiveToParts(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	k1 := utils.DeriveIdempotencyKey(at, "user-1", "acct-1")
	k2 := utils.DeriveIdempotencyKey(at, "user-1", "acct-2")
	k3 := utils.DeriveIdempotencyKey(at, "acct-1", "user-1")

	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
