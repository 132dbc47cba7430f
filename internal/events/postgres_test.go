package events

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPostgresOutput_InsertsKeyedEvent(t *testing.T) {
	db := &fakeExecer{}
	closed := false
	out := NewPostgresOutput(db, func() { closed = true })
	pub := NewPublisher(out, topics, nil)

	require.NoError(t, pub.OrderPlaced(sampleOrder()))
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "INSERT INTO order_events")
	assert.Equal(t, "order_placed_events", db.calls[0].args[0])
	assert.Equal(t, "o1", db.calls[0].args[1])
	assert.Contains(t, db.calls[0].args[2], `"orderId":"o1"`)

	require.NoError(t, pub.Close())
	assert.True(t, closed)
}

func TestPostgresOutput_UnkeyedWriteReadsOrderID(t *testing.T) {
	db := &fakeExecer{}
	out := NewPostgresOutput(db, nil)

	require.NoError(t, out.WriteMessage("order_confirmed_events", []byte(`{"orderId":"o9"}`)))
	assert.Equal(t, "o9", db.calls[0].args[1])

	assert.Error(t, out.WriteMessage("order_confirmed_events", []byte(`not json`)))

	db.err = errors.New("connection reset")
	assert.ErrorContains(t, out.WriteMessage("order_confirmed_events", []byte(`{"orderId":"o9"}`)), "order_events")
}
