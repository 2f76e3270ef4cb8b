package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a backend answer is read
const maxBodyBytes = 1 << 20

// Client talks to the hosted registration backend
type Client struct {
	endpoint   string
	encoding   Encoding
	httpClient *http.Client
}

// NewClient creates a backend client. An unknown encoding falls back to json-names.
func NewClient(endpoint string, encoding Encoding, timeout time.Duration) *Client {
	if !encoding.IsValid() {
		encoding = EncodingJSONNames
	}
	return &Client{
		endpoint: endpoint,
		encoding: encoding,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Encoding returns the POST encoding in use
func (c *Client) Encoding() Encoding {
	return c.encoding
}

// Quota fetches the remaining invitation count for a registration code
func (c *Client) Quota(ctx context.Context, id string) (int, error) {
	if strings.TrimSpace(id) == "" {
		return 0, ErrInvalidLink
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, fmt.Errorf("invalid backend endpoint: %w", err)
	}
	q := u.Query()
	q.Set("id", id)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build quota request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	env, err := c.do(req)
	if err != nil {
		return 0, err
	}

	if !env.Success {
		return 0, &RejectedError{Message: messageText(env.Message)}
	}

	var msg quotaMessage
	if err := json.Unmarshal(env.Message, &msg); err != nil || msg.Remaining == nil {
		return 0, fmt.Errorf("%w: quota message without remaining", ErrUnexpectedResponse)
	}

	return toCount(*msg.Remaining), nil
}

// Submit posts the entries and, if the answer cannot be read, re-fetches the
// quota once to confirm the entries landed.
func (c *Client) Submit(ctx context.Context, sr SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(sr.ID) == "" {
		return nil, ErrInvalidLink
	}

	body, contentType, err := c.encode(sr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	env, err := c.do(req)
	if err != nil {
		if errors.Is(err, ErrUnexpectedResponse) {
			return c.verify(ctx, sr)
		}
		return nil, err
	}

	if !env.Success {
		return nil, &RejectedError{Message: messageText(env.Message)}
	}

	result := &SubmitResult{Message: messageText(env.Message)}
	var msg submitMessage
	if err := json.Unmarshal(env.Message, &msg); err == nil && msg.RemainingAfter != nil {
		remaining := toCount(*msg.RemainingAfter)
		result.RemainingAfter = &remaining
	}
	return result, nil
}

// verify is the single best-effort confirmation after an unreadable POST answer
func (c *Client) verify(ctx context.Context, sr SubmitRequest) (*SubmitResult, error) {
	if sr.RemainingBefore < 0 {
		return nil, ErrUnverified
	}

	remaining, err := c.Quota(ctx, sr.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnverified, err)
	}

	if remaining > sr.RemainingBefore-len(sr.Entries) {
		return nil, ErrUnverified
	}

	return &SubmitResult{
		RemainingAfter: &remaining,
		Verified:       true,
	}, nil
}

func (c *Client) encode(sr SubmitRequest) ([]byte, string, error) {
	switch c.encoding {
	case EncodingJSONNames:
		b, err := json.Marshal(namesPayload{ID: sr.ID, Names: joinNames(sr.Entries)})
		return b, "application/json", err
	case EncodingJSONEntries:
		b, err := json.Marshal(entriesPayload{ID: sr.ID, Entries: sr.Entries})
		return b, "application/json", err
	case EncodingForm:
		form := url.Values{}
		form.Set("id", sr.ID)
		form.Set("names", joinNames(sr.Entries))
		if phones, ok := joinPhones(sr.Entries); ok {
			form.Set("phones", phones)
		}
		return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, c.encoding)
	}
}

// do sends req and decodes the envelope. Transport failures wrap ErrConnection,
// undecodable bodies wrap ErrUnexpectedResponse.
func (c *Client) do(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnexpectedResponse, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: status %d: %v", ErrUnexpectedResponse, resp.StatusCode, err)
	}
	return &env, nil
}
