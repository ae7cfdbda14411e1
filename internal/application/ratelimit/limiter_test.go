package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisinfra "github.com/go-library-cms/internal/infrastructure/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLimiter(redisinfra.NewCounterStore(rdb)), mr
}

func TestAllow_SixtyAllowedSixtyFirstRejected(t *testing.T) {
	l, mr := newRedisLimiter(t)
	ctx := context.Background()
	key := IPKey("10.0.0.1")

	for i := 1; i <= MaxRequests; i++ {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, "request %d", i)
	}
	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl := mr.TTL("rate:" + key)
	assert.True(t, ttl > 0 && ttl <= Window, "ttl %s", ttl)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < MaxRequests+5; i++ {
		_, err := l.Allow(ctx, UserKey("alice"))
		require.NoError(t, err)
	}
	ok, err := l.Allow(ctx, UserKey("bob"))
	require.NoError(t, err)
	assert.True(t, ok)

	left, err := l.Remaining(ctx, UserKey("bob"))
	require.NoError(t, err)
	assert.Equal(t, MaxRequests-1, left)
}

func TestAllow_NewWindowAfterExpiry(t *testing.T) {
	l, mr := newRedisLimiter(t)
	ctx := context.Background()
	key := UserKey("alice")

	for i := 0; i < MaxRequests+1; i++ {
		_, _ = l.Allow(ctx, key)
	}
	ok, _ := l.Allow(ctx, key)
	require.False(t, ok)

	mr.FastForward(Window + time.Second)

	ok, err := l.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	left, err := l.Remaining(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, MaxRequests-1, left)
}

func TestRemaining(t *testing.T) {
	l, _ := newRedisLimiter(t)
	ctx := context.Background()

	left, err := l.Remaining(ctx, "absent")
	require.NoError(t, err)
	assert.Equal(t, MaxRequests, left)

	for i := 0; i < MaxRequests+10; i++ {
		_, _ = l.Allow(ctx, "busy")
	}
	left, err = l.Remaining(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}

type mockCounterStore struct{ mock.Mock }

func (m *mockCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return m.Called(ctx, key, ttl).Error(0)
}
func (m *mockCounterStore) Get(ctx context.Context, key string) (int64, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func TestAllow_StoreFailureFailsOpen(t *testing.T) {
	store := &mockCounterStore{}
	store.On("Incr", mock.Anything, "rate:IP_1.2.3.4").Return(int64(0), errors.New("connection refused"))

	ok, err := NewLimiter(store).Allow(context.Background(), IPKey("1.2.3.4"))
	assert.True(t, ok)
	assert.Error(t, err)
	store.AssertExpectations(t)
}

func TestAllow_ExpireOnlyOnFirstIncrement(t *testing.T) {
	store := &mockCounterStore{}
	store.On("Incr", mock.Anything, "rate:k").Return(int64(1), nil).Once()
	store.On("Expire", mock.Anything, "rate:k", Window).Return(nil).Once()
	store.On("Incr", mock.Anything, "rate:k").Return(int64(2), nil).Once()

	l := NewLimiter(store)
	_, err := l.Allow(context.Background(), "k")
	require.NoError(t, err)
	_, err = l.Allow(context.Background(), "k")
	require.NoError(t, err)
	store.AssertExpectations(t)
}
