package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type connectRecorder struct {
	mu      sync.Mutex
	uris    []string
	err     error
	db      database
	gate    chan struct{}
	entered chan struct{}
	calls   int32
}

func (r *connectRecorder) connect(ctx context.Context, uri string) (database, error) {
	atomic.AddInt32(&r.calls, 1)
	if r.entered != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}
	}
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.uris = append(r.uris, uri)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.db, nil
}

func (r *connectRecorder) Calls() int {
	return int(atomic.LoadInt32(&r.calls))
}

func TestGetConnectionCachesHandle(t *testing.T) {
	sm := &mockSMClient{value: aws.String(`{"mongoUri": ".abc.net", "mongoUser": "u", "mongoPass": "p"}`)}
	rec := &connectRecorder{db: newFakeDatabase(nil)}
	conn := NewConnector(sm, "mongoCredentials", rec.connect, zaptest.NewLogger(t))

	first, err := conn.GetConnection(context.Background())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		db, err := conn.GetConnection(context.Background())
		require.NoError(t, err)
		assert.Same(t, first.(*fakeDatabase), db.(*fakeDatabase))
	}

	assert.Equal(t, 1, sm.Calls())
	assert.Equal(t, 1, rec.Calls())
	assert.Equal(t, []string{"mongodb+srv://u:p.abc.net"}, rec.uris)
}

func TestGetConnectionSecretFailure(t *testing.T) {
	secretErr := errors.New("Error from Secret")
	sm := &mockSMClient{err: secretErr}
	rec := &connectRecorder{db: newFakeDatabase(nil)}
	conn := NewConnector(sm, "mongoCredentials", rec.connect, zaptest.NewLogger(t))

	db, err := conn.GetConnection(context.Background())
	assert.Nil(t, db)
	assert.ErrorIs(t, err, secretErr)
	assert.Equal(t, 0, rec.Calls())
}

func TestGetConnectionRetriesAfterFailure(t *testing.T) {
	connectErr := errors.New("server selection timeout")
	sm := &mockSMClient{value: aws.String(validSecret)}
	rec := &connectRecorder{err: connectErr, db: newFakeDatabase(nil)}
	conn := NewConnector(sm, "mongoCredentials", rec.connect, zaptest.NewLogger(t))

	_, err := conn.GetConnection(context.Background())
	assert.ErrorIs(t, err, connectErr)
	assert.Nil(t, conn.cached())

	rec.err = nil
	db, err := conn.GetConnection(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, db)

	assert.Equal(t, 2, sm.Calls())
	assert.Equal(t, 2, rec.Calls())
}

func TestGetConnectionSingleFlight(t *testing.T) {
	sm := &mockSMClient{value: aws.String(validSecret)}
	rec := &connectRecorder{
		db:      newFakeDatabase(nil),
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	conn := NewConnector(sm, "mongoCredentials", rec.connect, zaptest.NewLogger(t))

	const callers = 8
	var wg, started sync.WaitGroup
	results := make([]database, callers)
	errs := make([]error, callers)
	call := func(i int) {
		defer wg.Done()
		started.Done()
		results[i], errs[i] = conn.GetConnection(context.Background())
	}

	// The first caller holds the connection attempt open until the gate closes.
	wg.Add(1)
	started.Add(1)
	go call(0)
	<-rec.entered
	require.Nil(t, conn.cached())

	for i := 1; i < callers; i++ {
		wg.Add(1)
		started.Add(1)
		go call(i)
	}
	started.Wait()
	close(rec.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, rec.db.(*fakeDatabase), results[i].(*fakeDatabase))
	}
	assert.Equal(t, 1, sm.Calls())
	assert.Equal(t, 1, rec.Calls())
}
