package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewradar/reviewradar/api/types"
)

type kindedErr struct {
	kind      string
	retryable bool
	msg       string
}

func (e *kindedErr) Error() string   { return e.msg }
func (e *kindedErr) Kind() string    { return e.kind }
func (e *kindedErr) Retryable() bool { return e.retryable }

func TestNewValidatesTheCommandSet(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(map[string]Operation{"": func(context.Context, []any) (any, error) { return nil, nil }})
	assert.Error(t, err)

	_, err = New(map[string]Operation{"noop": nil})
	assert.Error(t, err)

	b, err := New(map[string]Operation{"noop": func(context.Context, []any) (any, error) { return nil, nil }})
	require.NoError(t, err)
	assert.Equal(t, []string{"noop"}, b.Commands())
}

func TestHandleRoundTripsPlainData(t *testing.T) {
	b, err := New(map[string]Operation{
		"payload": func(context.Context, []any) (any, error) {
			return map[string]any{"a": 1, "b": []int{2, 3}}, nil
		},
	})
	require.NoError(t, err)

	resp := b.Handle(context.Background(), "payload", nil)
	require.Nil(t, resp.Error)
	// after canonicalization only generic data shapes remain
	value, ok := resp.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), value["a"])
	assert.Equal(t, []any{float64(2), float64(3)}, value["b"])
}

func TestHandlePassesArgsPositionally(t *testing.T) {
	var got []any
	b, err := New(map[string]Operation{
		"echo": func(_ context.Context, args []any) (any, error) {
			got = args
			return len(args), nil
		},
	})
	require.NoError(t, err)

	resp := b.Handle(context.Background(), "echo", []any{"x", float64(2)})
	require.Nil(t, resp.Error)
	assert.Equal(t, []any{"x", float64(2)}, got)
	assert.Equal(t, float64(2), resp.Value)
}

func TestHandleRendersFailures(t *testing.T) {
	b, err := New(map[string]Operation{
		"fail": func(context.Context, []any) (any, error) {
			return nil, errors.New("boom")
		},
		"auth": func(context.Context, []any) (any, error) {
			return nil, &kindedErr{kind: "auth", msg: "please sign in"}
		},
		"flaky": func(context.Context, []any) (any, error) {
			return nil, &kindedErr{kind: "network", retryable: true, msg: "timeout"}
		},
	})
	require.NoError(t, err)

	resp := b.Handle(context.Background(), "fail", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal", resp.Error.Kind)
	assert.Equal(t, "boom", resp.Error.Message)
	assert.Nil(t, resp.Value)

	resp = b.Handle(context.Background(), "auth", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "auth", resp.Error.Kind)
	assert.False(t, resp.Error.Retryable)

	resp = b.Handle(context.Background(), "flaky", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "network", resp.Error.Kind)
	assert.True(t, resp.Error.Retryable)
}

func TestUnknownCommandSettlesSynchronously(t *testing.T) {
	b, err := New(map[string]Operation{
		"noop": func(context.Context, []any) (any, error) { return nil, nil },
	})
	require.NoError(t, err)

	ch, done := b.Submit(context.Background(), "bogus", nil)
	assert.True(t, done, "lookup misses settle synchronously")

	resp := <-ch
	require.NotNil(t, resp.Error)
	assert.Equal(t, "unknown_command", resp.Error.Kind)
	assert.Contains(t, resp.Error.Message, "bogus")
}

func TestSubmitReportsDeferredSettlement(t *testing.T) {
	release := make(chan struct{})
	b, err := New(map[string]Operation{
		"slow": func(context.Context, []any) (any, error) {
			<-release
			return "done", nil
		},
	})
	require.NoError(t, err)

	ch, done := b.Submit(context.Background(), "slow", nil)
	assert.False(t, done, "real invocations settle later")

	select {
	case <-ch:
		t.Fatal("response arrived before the operation settled")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	resp := <-ch
	require.Nil(t, resp.Error)
	assert.Equal(t, "done", resp.Value)
}

func TestCanonicalizeRejectsNonData(t *testing.T) {
	_, err := Canonicalize(map[string]any{"fn": func() {}})
	assert.Error(t, err)

	v, err := Canonicalize(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCanonicalizeStructsToRecords(t *testing.T) {
	desc := types.StatusDescriptor{Text: "2", Color: "red", Title: "2 need attention", Icon: "attention"}
	v, err := Canonicalize(desc)
	require.NoError(t, err)

	record, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", record["text"])
	assert.Equal(t, "2 need attention", record["title"])
}
