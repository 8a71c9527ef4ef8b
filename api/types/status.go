package types

import (
	"encoding/json"
	"errors"
)

// HostError records the failure outcome of a single host within one pass.
type HostError struct {
	Host string
	Err  error
}

func (e HostError) Error() string {
	return e.Host + ": " + e.Err.Error()
}

func (e HostError) Unwrap() error {
	return e.Err
}

// Message is the rendered error text, for JSON surfaces that cannot carry an
// error value.
func (e HostError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// hostErrorWire is the JSON shape of a HostError: an error value cannot cross
// the wire, the rendered message can.
type hostErrorWire struct {
	Host  string `json:"host"`
	Error string `json:"error,omitempty"`
}

func (e HostError) MarshalJSON() ([]byte, error) {
	return json.Marshal(hostErrorWire{Host: e.Host, Error: e.Message()})
}

// UnmarshalJSON restores a HostError from its wire shape. The original error
// value is gone; the rebuilt Err carries the rendered message only.
func (e *HostError) UnmarshalJSON(data []byte) error {
	var w hostErrorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Host = w.Host
	e.Err = nil
	if w.Error != "" {
		e.Err = errors.New(w.Error)
	}
	return nil
}

// CombinedOutcome aggregates one orchestration pass over all hosts. Results
// and Errors follow settlement order, which is not deterministic when fetches
// complete concurrently. It is built fresh on every pass and never cached.
type CombinedOutcome struct {
	Results []ReviewSet `json:"results"`
	Errors  []HostError `json:"errors"`
}

// Category is an attention bucket a review belongs to.
type Category string

const (
	CategoryNeedsAttention Category = "needsAttention"
	CategoryIncoming       Category = "incoming"
	CategoryOutgoing       Category = "outgoing"
	CategoryWIP            Category = "wip"
)

// CategoryMap groups reviews by attention category. Keys are present only
// when the category is non-empty.
type CategoryMap map[Category][]Review

// StatusDescriptor is the single rendered summary produced per pass.
type StatusDescriptor struct {
	Text  string `json:"text"`
	Color string `json:"color"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}
