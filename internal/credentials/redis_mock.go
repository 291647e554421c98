package credentials

import (
	"context"
	"encoding"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Implements the LimitedRedis client struct
// Only suitable for testing
// The value set for the IntCmd or similar results is always 1 regardless of how many records were affected
// Contexts are completely ignored
type MockRedisClient struct {
	lock     *sync.Mutex
	store    map[string]map[string]any
	expiries map[string]time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		lock:     &sync.Mutex{},
		store:    map[string]map[string]any{},
		expiries: map[string]time.Time{},
	}
}

func convertValuesToMap(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return map[string]any{}, fmt.Errorf("number of provided values must be even")
	}
	output := map[string]any{}
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return map[string]any{}, fmt.Errorf("hash fields must be strings")
		}
		output[key] = values[i+1]
	}
	return output, nil
}

// expired removes the key if its expiry has passed, the lock has to be held
func (m *MockRedisClient) expired(key string) bool {
	expiry, found := m.expiries[key]
	if !found || time.Now().Before(expiry) {
		return false
	}
	delete(m.store, key)
	delete(m.expiries, key)
	return true
}

func (m *MockRedisClient) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	val, err := m.hset(key, values...)
	if err != nil {
		res.SetErr(err)
		return &res
	}
	res.SetVal(val)
	return &res
}

func (m *MockRedisClient) hset(key string, values ...any) (int64, error) {
	val, err := convertValuesToMap(values...)
	if err != nil {
		return 0, err
	}
	m.expired(key)
	existing, found := m.store[key]
	if !found {
		existing = map[string]any{}
		m.store[key] = existing
	}
	for k, v := range val {
		existing[k] = v
	}
	return 1, nil
}

func (m *MockRedisClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.MapStringStringCmd{}
	res.SetVal(map[string]string{})
	if m.expired(key) {
		return &res
	}
	val, found := m.store[key]
	if !found {
		return &res
	}
	output := map[string]string{}
	for k, v := range val {
		switch typed := v.(type) {
		case string:
			output[k] = typed
		case encoding.TextMarshaler:
			raw, err := typed.MarshalText()
			if err != nil {
				res.SetErr(err)
				return &res
			}
			output[k] = string(raw)
		default:
			output[k] = fmt.Sprint(typed)
		}
	}
	res.SetVal(output)
	return &res
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.IntCmd{}
	res.SetVal(m.del(keys...))
	return &res
}

func (m *MockRedisClient) del(keys ...string) int64 {
	for _, k := range keys {
		delete(m.store, k)
		delete(m.expiries, k)
	}
	return 1
}

func (m *MockRedisClient) ExpireAt(_ context.Context, key string, tm time.Time) *redis.BoolCmd {
	m.lock.Lock()
	defer m.lock.Unlock()
	res := redis.BoolCmd{}
	res.SetVal(m.expireAt(key, tm))
	return &res
}

func (m *MockRedisClient) expireAt(key string, tm time.Time) bool {
	if _, found := m.store[key]; !found {
		return false
	}
	m.expiries[key] = tm
	return true
}

// TxPipelined applies the queued commands while holding the lock so no reader sees a partial result
func (m *MockRedisClient) TxPipelined(_ context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	pipe := &mockPipeline{}
	if err := fn(pipe); err != nil {
		return nil, err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	var firstErr error
	for _, apply := range pipe.queued {
		if err := apply(m); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return pipe.cmds, firstErr
}

// mockPipeline queues the commands of a transaction. Only the commands issued by the credential
// store are implemented, any other one panics on the nil embedded interface.
type mockPipeline struct {
	redis.Pipeliner
	queued []func(*MockRedisClient) error
	cmds   []redis.Cmder
}

func (p *mockPipeline) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	p.cmds = append(p.cmds, cmd)
	p.queued = append(p.queued, func(m *MockRedisClient) error {
		cmd.SetVal(m.del(keys...))
		return nil
	})
	return cmd
}

func (p *mockPipeline) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "hset", key)
	p.cmds = append(p.cmds, cmd)
	p.queued = append(p.queued, func(m *MockRedisClient) error {
		val, err := m.hset(key, values...)
		if err != nil {
			cmd.SetErr(err)
			return err
		}
		cmd.SetVal(val)
		return nil
	})
	return cmd
}

func (p *mockPipeline) ExpireAt(ctx context.Context, key string, tm time.Time) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "expireat", key)
	p.cmds = append(p.cmds, cmd)
	p.queued = append(p.queued, func(m *MockRedisClient) error {
		cmd.SetVal(m.expireAt(key, tm))
		return nil
	})
	return cmd
}
