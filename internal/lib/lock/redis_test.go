package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-1"

func newTestRedis(t *testing.T) (*Redis, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	r := NewRedis(client, 5*time.Second, 5*time.Millisecond)
	r.newToken = func() string { return testToken }

	return r, mock
}

func TestRedisLockAndRelease(t *testing.T) {
	r, mock := newTestRedis(t)

	mock.ExpectSetNX("lock:event:1", testToken, 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:event:1"}, testToken).SetVal(int64(1))

	unlock, err := r.Lock(context.Background(), "1")
	require.NoError(t, err)

	unlock()
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLockRetriesWhileHeld(t *testing.T) {
	r, mock := newTestRedis(t)

	mock.ExpectSetNX("lock:event:1", testToken, 5*time.Second).SetVal(false)
	mock.ExpectSetNX("lock:event:1", testToken, 5*time.Second).SetVal(false)
	mock.ExpectSetNX("lock:event:1", testToken, 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:event:1"}, testToken).SetVal(int64(1))

	unlock, err := r.Lock(context.Background(), "1")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLockTimeout(t *testing.T) {
	client, mock := redismock.NewClientMock()
	r := NewRedis(client, 5*time.Second, 200*time.Millisecond)
	r.newToken = func() string { return testToken }

	mock.ExpectSetNX("lock:event:1", testToken, 5*time.Second).SetVal(false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Lock(ctx, "1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLockError(t *testing.T) {
	r, mock := newTestRedis(t)

	mock.ExpectSetNX("lock:event:1", testToken, 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := r.Lock(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReleaseLeavesForeignToken(t *testing.T) {
	r, mock := newTestRedis(t)

	mock.ExpectSetNX("lock:event:2", testToken, 5*time.Second).SetVal(true)
	// the lock expired and another holder owns the key: the script deletes nothing
	mock.ExpectEval(releaseScript, []string{"lock:event:2"}, testToken).SetVal(int64(0))

	unlock, err := r.Lock(context.Background(), "2")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}
