package status

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/serenity0102/factor-modelling-mining/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	tr := NewWithClient(db, "fb")
	ctx := context.Background()

	mock.ExpectGet("fb:status:u1").SetVal(runner.StatusDone)
	st, ok, err := tr.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, runner.StatusDone, st)

	mock.ExpectGet("fb:status:u2").RedisNil()
	_, ok, err = tr.Get(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet("fb:status:u3").SetErr(errors.New("connection refused"))
	_, _, err = tr.Get(ctx, "u3")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackerSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	tr := NewWithClient(db, "fb")
	ctx := context.Background()

	mock.ExpectSet("fb:status:u1", runner.StatusDone, 0).SetVal("OK")
	mock.ExpectHSet("fb:run:r1", "u1", runner.StatusDone).SetVal(1)
	mock.ExpectExpire("fb:run:r1", runTTL).SetVal(true)
	require.NoError(t, tr.Set(ctx, "r1", "u1", runner.StatusDone))

	mock.ExpectSet("fb:status:u2", runner.StatusFailed, 0).SetErr(errors.New("readonly"))
	assert.Error(t, tr.Set(ctx, "r1", "u2", runner.StatusFailed))

	mock.ExpectHGetAll("fb:run:r1").SetVal(map[string]string{"u1": runner.StatusDone})
	m, err := tr.Run(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, runner.StatusDone, m["u1"])

	mock.ExpectDel("fb:status:u1", "fb:status:u2").SetVal(2)
	require.NoError(t, tr.Reset(ctx, "u1", "u2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackerDefaults(t *testing.T) {
	db, _ := redismock.NewClientMock()
	tr := NewWithClient(db, "")
	assert.Equal(t, "factorbench:status:x", tr.statusKey("x"))

	_, err := New(runner.RedisConfig{})
	assert.Error(t, err)
}
