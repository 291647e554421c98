package credentials

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
)

const (
	credentialSuffix string        = "credential"
	expiresAtLeeway  time.Duration = time.Minute
)

// RedisStore persists the session credential as a redis hash
type RedisStore struct {
	rdb       LimitedRedisClient
	encryptor models.Encryptor
	key       string
}

func (RedisStore) serializeStruct(strct any) []any {
	v := reflect.ValueOf(strct)
	t := v.Type()
	var output []any
	for i := 0; i < v.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		fieldName := t.Field(i).Name
		fieldValue := v.Field(i).Interface()
		marshaller, ok := fieldValue.(encoding.TextMarshaler)
		if !ok {
			output = append(output, fieldName, fieldValue)
			continue
		}
		rawBytes, err := marshaller.MarshalText()
		if err != nil {
			output = append(output, fieldName, fieldValue)
			continue
		}
		output = append(output, fieldName, string(rawBytes))
	}
	return output
}

func (RedisStore) deserializeToStruct(hash map[string]string, output any) error {
	if len(hash) == 0 {
		// HGetAll returns an empty list of keys and values if the element is not present in the DB
		// then this is deserialized the empty valued struct of whatever it is we are looking at
		return gwerrors.ErrMissingDBResource
	}
	decoder, err := mapstructure.NewDecoder(
		&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result: output,
		},
	)
	if err != nil {
		return err
	}
	return decoder.Decode(hash)
}

func (r RedisStore) GetCredential(ctx context.Context) (models.Credential, error) {
	output := models.Credential{}
	raw, err := r.rdb.HGetAll(ctx, r.credentialKey()).Result()
	if err != nil {
		return output, err
	}
	err = r.deserializeToStruct(raw, &output)
	if err != nil {
		if errors.Is(err, gwerrors.ErrMissingDBResource) {
			return models.Credential{}, gwerrors.ErrCredentialNotFound
		}
		slog.Error("CREDENTIAL STORE", "message", "the stored credential cannot be parsed", "key", r.credentialKey(), "error", err)
		return models.Credential{}, fmt.Errorf("%w: %w", gwerrors.ErrCredentialParse, err)
	}
	return output.Decrypt(r.encryptor)
}

func (r RedisStore) SetCredential(ctx context.Context, credential models.Credential) error {
	encCredential, err := credential.Encrypt(r.encryptor)
	if err != nil {
		return err
	}
	key := r.credentialKey()
	fields := r.serializeStruct(encCredential)
	expiresAt := latestCookieExpiry(credential.Cookies)
	// HSET only adds or overwrites fields, so the previous hash is removed in the same transaction
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields...)
		if !expiresAt.IsZero() {
			pipe.ExpireAt(ctx, key, expiresAt.Add(expiresAtLeeway))
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("CREDENTIAL STORE", "message", "stored the credential", "key", key, "expiresAt", expiresAt)
	return nil
}

func (r RedisStore) RemoveCredential(ctx context.Context) error {
	return r.rdb.Del(ctx, r.credentialKey()).Err()
}

func (r RedisStore) credentialKey() string {
	return r.key + ":" + credentialSuffix
}

// latestCookieExpiry returns the furthest expiry of the provided cookies or the zero time if
// any of them is a session cookie, in which case the credential should not expire on its own
func latestCookieExpiry(cookies models.SerializableCookies) time.Time {
	var latest time.Time
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		if cookie.Expires.IsZero() {
			return time.Time{}
		}
		if cookie.Expires.After(latest) {
			latest = cookie.Expires
		}
	}
	return latest
}

type RedisStoreOption func(*RedisStore) error

func WithRedisConfig(redisConfig config.RedisConfig) RedisStoreOption {
	return func(r *RedisStore) error {
		if len(redisConfig.Addresses) == 0 {
			return fmt.Errorf("at least one redis address is required")
		}
		if redisConfig.IsSentinel {
			rdb := redis.NewFailoverClient(&redis.FailoverOptions{
				MasterName:       redisConfig.MasterName,
				SentinelAddrs:    redisConfig.Addresses,
				Password:         string(redisConfig.Password),
				DB:               redisConfig.DBIndex,
				SentinelPassword: string(redisConfig.Password),
			})
			r.rdb = rdb
			return nil
		}
		rdb := redis.NewClient(&redis.Options{
			Password: string(redisConfig.Password),
			DB:       redisConfig.DBIndex,
			Addr:     redisConfig.Addresses[0],
		})
		r.rdb = rdb
		return nil
	}
}

func WithRedisClient(client LimitedRedisClient) RedisStoreOption {
	return func(r *RedisStore) error {
		r.rdb = client
		return nil
	}
}

func WithMockRedisClient() RedisStoreOption {
	return WithRedisClient(NewMockRedisClient())
}

func WithEncryption(secretKey string) RedisStoreOption {
	return func(r *RedisStore) error {
		encryptor, err := NewGCMEncryptor(secretKey)
		if err != nil {
			return err
		}
		r.encryptor = encryptor
		return nil
	}
}

func WithKey(key string) RedisStoreOption {
	return func(r *RedisStore) error {
		if key == "" {
			return fmt.Errorf("the redis key cannot be empty")
		}
		r.key = key
		return nil
	}
}

func NewRedisStore(options ...RedisStoreOption) (*RedisStore, error) {
	store := RedisStore{key: "coursehub"}
	for _, opt := range options {
		err := opt(&store)
		if err != nil {
			return &RedisStore{}, err
		}
	}
	if store.rdb == nil {
		return &RedisStore{}, fmt.Errorf("redis client is not initialized")
	}
	return &store, nil
}

// Check that the store satisfies the required interface
var _ models.CredentialRepository = (*RedisStore)(nil)
