package types

import "time"

// BridgeFailure is the structured form a rejection takes crossing the request
// bridge. Kind and Retryable let callers distinguish auth failures from
// transient network ones without string matching; Message is the rendered
// text for surfaces that can only show a string.
type BridgeFailure struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (f *BridgeFailure) Error() string {
	return f.Message
}

// BridgeResponse is the bridge's wire envelope: exactly one of Value and
// Error is set.
type BridgeResponse struct {
	Value any            `json:"value,omitempty"`
	Error *BridgeFailure `json:"error,omitempty"`
}

// Snapshot is what the most recent orchestration pass produced, retained for
// read surfaces (popup, CLI, detail view).
type Snapshot struct {
	Descriptor StatusDescriptor `json:"descriptor"`
	Outcome    CombinedOutcome  `json:"outcome"`
	Categories CategoryMap      `json:"categories"`
	At         time.Time        `json:"at"`
}
