package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/api/types"
)

// ErrUnknownCommand is returned when a request names a command that was not
// registered at construction time.
var ErrUnknownCommand = errors.New("unknown command")

// Operation is one asynchronous command exposed over the bridge. Arguments
// arrive positionally, decoded from the transport as plain data.
type Operation func(ctx context.Context, args []any) (any, error)

// Bridge maps command names to operations. The command set is closed: it is
// validated at construction, so an unknown command at request time is a
// caller error, not a wiring surprise.
type Bridge struct {
	ops map[string]Operation
}

// New builds a bridge over a closed set of operations. Empty names and nil
// operations are configuration errors.
func New(ops map[string]Operation) (*Bridge, error) {
	if len(ops) == 0 {
		return nil, errors.New("bridge: no operations registered")
	}
	registered := make(map[string]Operation, len(ops))
	for name, op := range ops {
		if name == "" {
			return nil, errors.New("bridge: operation with empty name")
		}
		if op == nil {
			return nil, fmt.Errorf("bridge: operation %q is nil", name)
		}
		registered[name] = op
	}
	return &Bridge{ops: registered}, nil
}

// Commands returns the registered command names, sorted.
func (b *Bridge) Commands() []string {
	names := make([]string, 0, len(b.ops))
	for name := range b.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Submit dispatches a command and returns a channel that delivers exactly one
// response. The returned bool reports whether the response is already
// available: command lookup misses settle synchronously, real invocations
// settle later, and a transport that must keep its channel open should wait
// when the bool is false.
func (b *Bridge) Submit(ctx context.Context, command string, args []any) (<-chan types.BridgeResponse, bool) {
	ch := make(chan types.BridgeResponse, 1)

	op, exists := b.ops[command]
	if !exists {
		ch <- types.BridgeResponse{Error: failureFrom(fmt.Errorf("%w: %q", ErrUnknownCommand, command))}
		return ch, true
	}

	requestID := uuid.NewString()
	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"command":    command,
	}).Debug("dispatching bridge request")

	go func() {
		value, err := op(ctx, args)
		if err != nil {
			logrus.WithField("request_id", requestID).Debugf("bridge request failed: %v", err)
			ch <- types.BridgeResponse{Error: failureFrom(err)}
			return
		}
		canonical, err := Canonicalize(value)
		if err != nil {
			ch <- types.BridgeResponse{Error: &types.BridgeFailure{Kind: "serialization", Message: err.Error()}}
			return
		}
		ch <- types.BridgeResponse{Value: canonical}
	}()

	return ch, false
}

// Handle dispatches a command and blocks until it settles.
func (b *Bridge) Handle(ctx context.Context, command string, args []any) types.BridgeResponse {
	ch, _ := b.Submit(ctx, command, args)
	return <-ch
}

// Canonicalize round-trips a value through JSON so only plain data survives:
// records, ordered lists, strings, numbers, booleans, null. Values that
// cannot be rendered as data at all are rejected rather than crossing the
// boundary half-formed.
func Canonicalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("result is not plain data: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// failureFrom renders an error into the structured failure shape, picking up
// Kind and Retryable from error types that declare them.
func failureFrom(err error) *types.BridgeFailure {
	f := &types.BridgeFailure{Kind: "internal", Message: err.Error()}

	if errors.Is(err, ErrUnknownCommand) {
		f.Kind = "unknown_command"
		return f
	}

	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) {
		f.Kind = kinded.Kind()
	}
	var retryable interface{ Retryable() bool }
	if errors.As(err, &retryable) {
		f.Retryable = retryable.Retryable()
	}
	return f
}
