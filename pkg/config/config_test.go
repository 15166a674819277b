package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SYNC_PAGE_SIZE", "SYNC_COLLECTION_DELAY", "JWT_ACCESS_EXPIRY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.SyncPageSize)
	assert.Equal(t, 400*time.Millisecond, cfg.SyncCollectionDelay)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
}

func TestLoadSyncOverrides(t *testing.T) {
	t.Setenv("SYNC_PAGE_SIZE", "25")
	t.Setenv("SYNC_COLLECTION_DELAY", "1s")

	cfg := Load()

	assert.Equal(t, 25, cfg.SyncPageSize)
	assert.Equal(t, time.Second, cfg.SyncCollectionDelay)
}

func TestLoadIgnoresInvalidSyncValues(t *testing.T) {
	t.Setenv("SYNC_PAGE_SIZE", "not-a-number")
	t.Setenv("SYNC_COLLECTION_DELAY", "soon")

	cfg := Load()

	assert.Equal(t, 100, cfg.SyncPageSize)
	assert.Equal(t, 400*time.Millisecond, cfg.SyncCollectionDelay)
}
