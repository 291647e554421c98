package credentials

import (
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredential() models.Credential {
	return models.Credential{
		Value: "access-token-1",
		Cookies: models.SerializableCookies{
			{Name: "refresh_token", Value: "refresh-1", Path: "/api/v1/auth", HttpOnly: true},
		},
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewRedisStore(WithMockRedisClient())
	require.NoError(t, err)

	_, err = store.GetCredential(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrCredentialNotFound)

	credential := testCredential()
	require.NoError(t, store.SetCredential(ctx, credential))
	stored, err := store.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, credential.Value, stored.Value)
	assert.True(t, credential.UpdatedAt.Equal(stored.UpdatedAt))
	require.Len(t, stored.Cookies, 1)
	assert.Equal(t, "refresh-1", stored.Cookies[0].Value)
	assert.Equal(t, "/api/v1/auth", stored.Cookies[0].Path)

	require.NoError(t, store.RemoveCredential(ctx))
	_, err = store.GetCredential(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrCredentialNotFound)
}

func TestRedisStoreEncryption(t *testing.T) {
	ctx := context.Background()
	secretKey := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, secretKey)
	require.NoError(t, err)
	client := NewMockRedisClient()
	store, err := NewRedisStore(WithRedisClient(client), WithEncryption(string(secretKey)), WithKey("test"))
	require.NoError(t, err)
	credential := testCredential()

	require.NoError(t, store.SetCredential(ctx, credential))

	raw, err := client.HGetAll(ctx, "test:credential").Result()
	require.NoError(t, err)
	assert.NotEqual(t, credential.Value, raw["Value"])
	assert.NotContains(t, raw["Cookies"], "refresh-1")
	stored, err := store.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, credential.Value, stored.Value)
	assert.Equal(t, "refresh-1", stored.Cookies[0].Value)
}

func TestRedisStoreExpiresWithCookies(t *testing.T) {
	ctx := context.Background()
	client := NewMockRedisClient()
	store, err := NewRedisStore(WithRedisClient(client))
	require.NoError(t, err)
	credential := testCredential()
	credential.Cookies[0].Expires = time.Now().Add(-2 * expiresAtLeeway)

	require.NoError(t, store.SetCredential(ctx, credential))

	_, err = store.GetCredential(ctx)
	assert.ErrorIs(t, err, gwerrors.ErrCredentialNotFound)
}

func TestRedisStoreOverwritesPreviousFields(t *testing.T) {
	ctx := context.Background()
	client := NewMockRedisClient()
	store, err := NewRedisStore(WithRedisClient(client))
	require.NoError(t, err)
	require.NoError(t, client.HSet(ctx, "coursehub:credential", "Stale", "value").Err())

	require.NoError(t, store.SetCredential(ctx, models.NewCredential("token", &http.Cookie{Name: "a", Value: "b"})))

	raw, err := client.HGetAll(ctx, "coursehub:credential").Result()
	require.NoError(t, err)
	assert.NotContains(t, raw, "Stale")
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	_, err := NewRedisStore()
	assert.Error(t, err)
	_, err = NewRedisStore(WithMockRedisClient(), WithKey(""))
	assert.Error(t, err)
	_, err = NewRedisStore(WithRedisConfig(config.RedisConfig{}))
	assert.Error(t, err)
}

func TestLatestCookieExpiry(t *testing.T) {
	now := time.Now()
	assert.True(t, latestCookieExpiry(nil).IsZero())
	assert.True(t, latestCookieExpiry(models.SerializableCookies{{Name: "session"}}).IsZero())
	expiry := latestCookieExpiry(models.SerializableCookies{
		{Name: "a", Expires: now.Add(time.Hour)},
		{Name: "b", Expires: now.Add(2 * time.Hour)},
	})
	assert.True(t, now.Add(2*time.Hour).Equal(expiry))
}

// transactionOnlyClient counts the commands that were sent outside of a transaction
type transactionOnlyClient struct {
	*MockRedisClient
	direct int
}

func (c *transactionOnlyClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.direct++
	return c.MockRedisClient.Del(ctx, keys...)
}

func (c *transactionOnlyClient) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	c.direct++
	return c.MockRedisClient.HSet(ctx, key, values...)
}

func (c *transactionOnlyClient) ExpireAt(ctx context.Context, key string, tm time.Time) *redis.BoolCmd {
	c.direct++
	return c.MockRedisClient.ExpireAt(ctx, key, tm)
}

func TestRedisStoreWritesInOneTransaction(t *testing.T) {
	ctx := context.Background()
	client := &transactionOnlyClient{MockRedisClient: NewMockRedisClient()}
	store, err := NewRedisStore(WithRedisClient(client))
	require.NoError(t, err)
	expiring := testCredential()
	expiring.Cookies[0].Expires = time.Now().Add(time.Hour)

	require.NoError(t, store.SetCredential(ctx, expiring))

	assert.Equal(t, 0, client.direct)
	assert.Contains(t, client.expiries, "coursehub:credential")
	stored, err := store.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, expiring.Value, stored.Value)

	// a session cookie replaces the credential without keeping the previous expiry
	require.NoError(t, store.SetCredential(ctx, testCredential()))

	assert.Equal(t, 0, client.direct)
	assert.NotContains(t, client.expiries, "coursehub:credential")
}
