package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"finance_tracker/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTokens(t *testing.T, ttl time.Duration) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	ts, err := NewTokenService(testSecret, ttl)
	require.NoError(t, err)
	return ts.WithClock(clock.Now), clock
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	_, err := NewTokenService(strings.Repeat("x", 31), time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService(testSecret, 0)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	ts, clock := newTokens(t, time.Hour)
	user := &domain.User{Username: "alice", Role: domain.RoleAdmin, Enabled: true}
	token, err := ts.Issue(user)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.True(t, claims.Enabled)
	assert.True(t, clock.t.Equal(claims.IssuedAt.Time))
	assert.True(t, clock.t.Add(time.Hour).Equal(claims.ExpiresAt.Time))

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = ts.Verify(token)
	assert.NoError(t, err, "valid within TTL")

	clock.t = clock.t.Add(time.Minute)
	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired, "exp <= now is expired")
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	ts, clock := newTokens(t, time.Hour)
	token, err := ts.Issue(&domain.User{Username: "alice", Role: domain.RoleClient, Enabled: true})
	require.NoError(t, err)

	_, err = ts.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	parts := strings.Split(token, ".")
	_, err = ts.Verify(parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:])
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other, err := NewTokenService(strings.Repeat("z", 32), time.Hour)
	require.NoError(t, err)
	foreign, err := other.WithClock(clock.Now).Issue(&domain.User{Username: "alice"})
	require.NoError(t, err)
	_, err = ts.Verify(foreign)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Signed with the right key but without a username claim
	noName := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	})
	raw, err := noName.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ts.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Signed with the right key but carrying a role that does not exist
	rogue, err := ts.Issue(&domain.User{Username: "alice", Role: domain.Role("ROOT"), Enabled: true})
	require.NoError(t, err)
	_, err = ts.Verify(rogue)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// alg=none is never accepted
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "alice", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour))}})
	raw, err = unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ts.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPrincipalAndExtractUsername(t *testing.T) {
	ts, _ := newTokens(t, time.Hour)
	token, err := ts.Issue(&domain.User{Username: "bob", Role: domain.RoleClient, Enabled: true})
	require.NoError(t, err)

	for _, raw := range []string{token, "Bearer " + token} {
		name, err := ts.ExtractUsername(raw)
		require.NoError(t, err)
		assert.Equal(t, "bob", name)

		p, err := ts.Principal(raw)
		require.NoError(t, err)
		assert.Equal(t, domain.Principal{Username: "bob", Role: domain.RoleClient}, p)
	}

	disabled, err := ts.Issue(&domain.User{Username: "carol", Role: domain.RoleClient, Enabled: false})
	require.NoError(t, err)
	_, err = ts.Principal(disabled)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)

	ok, err := h.Verify("password1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("password2", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := h.Hash("password1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted")
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	require.True(t, c.Enabled())

	var got []string
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", []string{"a", "b"}, time.Minute))
	assert.True(t, mr.Exists("test:k"))
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired")

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("test:k"))
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	var nilCache *Cache
	for _, c := range []*Cache{nilCache, NewCache(nil, "x:")} {
		assert.False(t, c.Enabled())
		assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
		var v int
		found, err := c.Get(ctx, "k", &v)
		assert.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, c.Delete(ctx, "k"))
	}
}
