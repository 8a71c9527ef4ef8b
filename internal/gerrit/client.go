package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/api/types"
)

// Gerrit prepends this prefix to every JSON response to defeat XSSI.
var xssiPrefix = []byte(")]}'")

const maxResponseBodySize = 4 << 20 // 4MB

// AuthError is returned when a host rejects the configured credentials.
type AuthError struct {
	Host   string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication to %s failed (HTTP %d), please sign in again", e.Host, e.Status)
}

func (e *AuthError) Kind() string { return "auth" }

func (e *AuthError) Retryable() bool { return false }

// NetworkError covers every non-auth failure talking to a host.
type NetworkError struct {
	Host string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Kind() string { return "network" }

func (e *NetworkError) Retryable() bool { return true }

// Client talks to Gerrit-style review hosts over their REST API.
type Client struct {
	httpClient *http.Client
	newBackoff func() backoff.BackOff
}

// NewClient creates a review client. Transient network failures are retried
// with capped exponential backoff; auth failures are permanent.
func NewClient(opts ...Option) (*Client, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{Timeout: o.Timeout},
		newBackoff: o.NewBackoff,
	}, nil
}

// FetchAccount fetches the authenticated viewer account from a host.
func (c *Client) FetchAccount(ctx context.Context, host types.Host) (types.Account, error) {
	var account types.Account
	if err := c.getJSON(ctx, host, "/accounts/self", &account); err != nil {
		return types.Account{}, err
	}
	return account, nil
}

// changeInfo is the wire shape of one Gerrit change, reduced to the fields
// the categorizer needs.
type changeInfo struct {
	ID             string                   `json:"id"`
	Number         int                      `json:"_number"`
	Subject        string                   `json:"subject"`
	Project        string                   `json:"project"`
	Branch         string                   `json:"branch"`
	Status         string                   `json:"status"`
	Owner          types.Account            `json:"owner"`
	WorkInProgress bool                     `json:"work_in_progress"`
	Reviewers      map[string][]types.Account `json:"reviewers"`
	AttentionSet   map[string]attentionEntry  `json:"attention_set"`
}

type attentionEntry struct {
	Account types.Account `json:"account"`
}

// FetchReviews fetches every open change the viewer owns or reviews.
func (c *Client) FetchReviews(ctx context.Context, host types.Host, account types.Account) (types.ReviewSet, error) {
	query := url.Values{}
	query.Set("q", "is:open (owner:self OR reviewer:self)")
	query.Add("o", "DETAILED_ACCOUNTS")
	query.Add("o", "ATTENTION_SET_UPDATES")

	var changes []changeInfo
	if err := c.getJSON(ctx, host, "/changes/?"+query.Encode(), &changes); err != nil {
		return types.ReviewSet{}, err
	}

	set := types.ReviewSet{
		Host:    host.Name,
		Viewer:  account,
		Reviews: make([]types.Review, 0, len(changes)),
	}
	for _, ch := range changes {
		set.Reviews = append(set.Reviews, toReview(ch, host.Name))
	}

	logrus.Debugf("fetched %d open reviews from %s", len(set.Reviews), host.Name)
	return set, nil
}

func toReview(ch changeInfo, host string) types.Review {
	review := types.Review{
		ID:             ch.ID,
		Number:         ch.Number,
		Subject:        ch.Subject,
		Project:        ch.Project,
		Branch:         ch.Branch,
		Status:         ch.Status,
		Owner:          ch.Owner,
		WorkInProgress: ch.WorkInProgress,
		Host:           host,
	}
	for _, r := range ch.Reviewers["REVIEWER"] {
		review.ReviewerIDs = append(review.ReviewerIDs, r.AccountID)
	}
	for id, entry := range ch.AttentionSet {
		if entry.Account.AccountID != 0 {
			review.AttentionIDs = append(review.AttentionIDs, entry.Account.AccountID)
			continue
		}
		if n, err := strconv.Atoi(id); err == nil {
			review.AttentionIDs = append(review.AttentionIDs, n)
		}
	}
	return review
}

// getJSON performs an authenticated GET against a host, strips the XSSI
// prefix, and decodes the body. Network failures are retried per the client's
// backoff policy; auth failures abort immediately.
func (c *Client) getJSON(ctx context.Context, host types.Host, path string, out any) error {
	endpoint := host.URL
	if host.Username != "" {
		// Gerrit serves authenticated REST under the /a/ prefix.
		endpoint += "/a"
	}
	endpoint += path

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(&NetworkError{Host: host.Name, Err: err})
		}
		if host.Username != "" {
			req.SetBasicAuth(host.Username, host.Password)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &NetworkError{Host: host.Name, Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(&AuthError{Host: host.Name, Status: resp.StatusCode})
		case resp.StatusCode != http.StatusOK:
			return &NetworkError{Host: host.Name, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		if err != nil {
			return &NetworkError{Host: host.Name, Err: err}
		}
		body = bytes.TrimPrefix(body, xssiPrefix)

		if err := json.Unmarshal(bytes.TrimSpace(body), out); err != nil {
			return backoff.Permanent(&NetworkError{Host: host.Name, Err: fmt.Errorf("malformed response: %w", err)})
		}
		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(c.newBackoff(), ctx))
}

// defaultBackoff caps retries so a flapping host cannot stall a pass for long.
func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 15 * time.Second
	return backoff.WithMaxRetries(b, 3)
}
