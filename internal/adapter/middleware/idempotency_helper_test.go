package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var testKey = buildKey("POST", "/api/loans", strings.Repeat("b", 32), strings.Repeat("a", 32))

func Test_bodyHash(t *testing.T) {
	sum := sha256.Sum256([]byte("hello world"))
	assert.Equal(t, hex.EncodeToString(sum[:]), bodyHash([]byte("hello world")))
	assert.NotEqual(t, bodyHash([]byte(`{"a":1}`)), bodyHash([]byte(`{"a":2}`)))
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	assert.Equal(t, time.UTC, u.Location())
	assert.WithinDuration(t, time.Now(), u, 2*time.Second)
}

func Test_buildKey(t *testing.T) {
	user, req := strings.Repeat("b", 32), strings.Repeat("a", 32)
	k := buildKey("POST", "/api/loans/:application_id/disbursements", user, req)
	assert.Equal(t, "idemp:loanledger:post:/api/loans/:application_id/disbursements:"+user+":"+req, k)

	// the same request id from another user must not collide
	assert.NotEqual(t, k, buildKey("POST", "/api/loans/:application_id/disbursements", strings.Repeat("c", 32), req))
}

func Test_validReqID(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", true}, // uuid v4
		{"3f9a6a1b-3d54-1fbe-8b3a-6b3e8d6b2c88", true}, // uuid v1
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88", true},     // 32 hex
		{"", false},                                       // empty
		{strings.Repeat("A", 32), false},                  // uppercase hex
		{strings.Repeat("a", 31), false},                  // short
		{strings.Repeat("a", 33), false},                  // long
		{strings.Repeat("z", 32), false},                  // not hex
		{"{3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88}", false}, // braced
		{"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", false},   // uppercase uuid
		{"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", false},   // version 9
		{"3f9a6a1b-3d54-4fbe-cb3a-6b3e8d6b2c88", false},   // non-RFC variant
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validReqID(tt.raw), "validReqID(%q)", tt.raw)
	}
}

func Test_parseAxRequestAt(t *testing.T) {
	now := time.Now().UTC()
	want0300 := time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)

	valid := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"epoch seconds", strconv.FormatInt(now.Unix(), 10), time.Unix(now.Unix(), 0).UTC()},
		{"epoch millis", strconv.FormatInt(now.UnixMilli(), 10), time.UnixMilli(now.UnixMilli()).UTC()},
		{"rfc3339 offset", "2025-09-05T10:00:00+07:00", want0300},
		{"rfc3339 zulu", "2025-09-05T03:00:00Z", want0300},
		{"padded", "  2025-09-05T03:00:00Z ", want0300},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAxRequestAt(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, raw := range []string{"", "not-a-time", "2025-09-05T10:00:00", "2025-09-05", "1736123456abc"} {
		_, err := parseAxRequestAt(raw)
		assert.Error(t, err, "expected error for %q", raw)
	}
}

func Test_provisionalSet_LoadEntry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)

	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash([]byte(`{"a":1}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ok, err := provisionalSet(ctx, rdb, testKey, entry)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, provisionalLockTTL, mr.TTL(testKey))

	ok, err = provisionalSet(ctx, rdb, testKey, entry)
	require.NoError(t, err)
	assert.False(t, ok, "second provisional set must lose")

	got, err := loadEntry(ctx, rdb, testKey)
	require.NoError(t, err)
	assert.True(t, got.InProgress)
	assert.Equal(t, entry.RequestID, got.RequestID)
	assert.Equal(t, entry.BodySHA256, got.BodySHA256)

	// the provisional marker expires if the handler never finishes
	mr.FastForward(provisionalLockTTL + time.Second)
	_, err = loadEntry(ctx, rdb, testKey)
	assert.ErrorIs(t, err, redis.Nil)
}

func Test_saveFinal_Release(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)

	final := idempEntry{
		Code:       201,
		Body:       []byte(`{"ok":true}`),
		BodySHA256: bodyHash([]byte(`{"ok":true}`)),
		RequestID:  strings.Repeat("a", 32),
		CreatedAt:  nowUTC(),
	}
	require.NoError(t, saveFinal(ctx, rdb, testKey, final, 5*time.Second))
	assert.Equal(t, 5*time.Second, mr.TTL(testKey))

	got, err := loadEntry(ctx, rdb, testKey)
	require.NoError(t, err)
	assert.False(t, got.InProgress)
	assert.Equal(t, 201, got.Code)
	assert.JSONEq(t, `{"ok":true}`, string(got.Body))

	require.NoError(t, release(ctx, rdb, testKey))
	assert.False(t, mr.Exists(testKey))
}
