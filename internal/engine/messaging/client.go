// Package messaging wraps the external professional-network messaging
// provider (spec §4.1, §6). Grounded on original_source's
// app/services/unipile_service.py, translated operation-for-operation.
//
// Deliberate deviation from the original: the Python client disables TLS
// verification (httpx.AsyncClient(verify=False)) on every request. That is
// a security hole, not a design requirement of the spec, so this client
// uses the stdlib's default TLS verification.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/outreach-engine/scheduler/internal/platform/cache"
)

var handlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`linkedin\.com/in/([^/?]+)`),
	regexp.MustCompile(`linkedin\.com/sales/people/([^/?]+)`),
}

// ExtractHandle pulls the provider handle out of a profile URL, matching
// /in/<handle> or /sales/people/<handle>. Returns "" if neither matches.
func ExtractHandle(profileURL string) string {
	for _, re := range handlePatterns {
		if m := re.FindStringSubmatch(profileURL); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

// Result is the typed envelope every operation returns (spec §4.1).
type Result struct {
	Success    bool
	Data       json.RawMessage
	Error      string
	StatusCode int
}

type Client struct {
	baseURL   string
	apiKey    string
	accountID string
	http      *http.Client
	cache     *cache.ResponseCache
}

func New(baseURL, apiKey, accountID string, timeout time.Duration, respCache *cache.ResponseCache) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		accountID: accountID,
		http:      &http.Client{Timeout: timeout},
		cache:     respCache,
	}
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body interface{}) (*Result, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("account_id", c.accountID)
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return &Result{Success: true, Data: respBody, StatusCode: resp.StatusCode}, nil
	}
	return &Result{Success: false, Error: string(respBody), StatusCode: resp.StatusCode}, nil
}

// SendInvitation truncates message to 300 characters and posts a
// connection request. The provider treats duplicate invites as idempotent.
func (c *Client) SendInvitation(ctx context.Context, providerHandle, message string) (*Result, error) {
	if providerHandle == "" {
		return &Result{Success: false, Error: "Could not extract provider id"}, nil
	}
	if len(message) > 300 {
		message = message[:300]
	}
	return c.do(ctx, http.MethodPost, "/users/invite", nil, map[string]string{
		"provider_id": providerHandle,
		"account_id":  c.accountID,
		"message":     message,
	})
}

func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*Result, error) {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/chats/%s/messages", chatID), nil, map[string]string{
		"account_id": c.accountID,
		"text":       text,
	})
}

func (c *Client) CheckConnectionStatus(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/accounts/%s", c.accountID), nil, nil)
}

// ListChats is the uncached raw call, used by connection-acceptance
// detection which always wants a fresh chat list.
func (c *Client) ListChats(ctx context.Context, limit int) (*Result, error) {
	return c.do(ctx, http.MethodGet, "/chats", map[string]string{"limit": fmt.Sprint(limit)}, nil)
}

// ListChatMessagesCached wraps list_chat_messages with the Response Cache,
// returning whether new messages arrived since the last fetch (spec §4.2).
func (c *Client) ListChatMessagesCached(ctx context.Context, chatID string, limit int) (*Result, bool, error) {
	data, isNew, err := c.cache.GetOrFetch(ctx, cache.ClassMessages, chatID, func(ctx context.Context) (interface{}, string, error) {
		result, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chats/%s/messages", chatID), map[string]string{"limit": fmt.Sprint(limit)}, nil)
		if err != nil || !result.Success {
			return result, "", err
		}
		id, ts, _ := latestMessageIDAndTimestamp(result.Data)
		return result, cache.HashMessages(id, ts), nil
	})
	if err != nil {
		return nil, false, err
	}
	return data.(*Result), isNew, nil
}

// GetProfileCached wraps get_profile with the long-TTL Response Cache band.
func (c *Client) GetProfileCached(ctx context.Context, handle string) (*Result, error) {
	data, _, err := c.cache.GetOrFetch(ctx, cache.ClassProfile, handle, func(ctx context.Context) (interface{}, string, error) {
		result, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s", handle), nil, nil)
		return result, handle, err
	})
	if err != nil {
		return nil, err
	}
	return data.(*Result), nil
}

type chatEnvelope struct {
	Items []struct {
		ID         string `json:"id"`
		ProviderID string `json:"provider_id"`
		Attendee   struct {
			ProviderID string `json:"provider_id"`
		} `json:"attendee"`
	} `json:"items"`
}

// ParseChatHandles maps each chat's attendee provider handle to its chat id,
// used to detect which awaiting-acceptance leads now have a live chat.
func ParseChatHandles(data json.RawMessage) (map[string]string, error) {
	var env chatEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(env.Items))
	for _, item := range env.Items {
		handle := item.Attendee.ProviderID
		if handle == "" {
			handle = item.ProviderID
		}
		out[handle] = item.ID
	}
	return out, nil
}

type messageEnvelope struct {
	Items []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Timestamp string `json:"timestamp"`
		IsSender  bool   `json:"is_sender"`
	} `json:"items"`
}

func latestMessageIDAndTimestamp(data json.RawMessage) (id, timestamp string, err error) {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", "", err
	}
	if len(env.Items) == 0 {
		return "", "", nil
	}
	last := env.Items[len(env.Items)-1]
	return last.ID, last.Timestamp, nil
}

// LastInboundMessage returns the most recent message not sent by this
// account, if any arrived in the fetched window.
func LastInboundMessage(result *Result) (text string, at time.Time, ok bool) {
	var env messageEnvelope
	if err := json.Unmarshal(result.Data, &env); err != nil {
		return "", time.Time{}, false
	}
	for i := len(env.Items) - 1; i >= 0; i-- {
		item := env.Items[i]
		if item.IsSender {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, item.Timestamp)
		if err != nil {
			parsed = time.Now().UTC()
		}
		return item.Text, parsed, true
	}
	return "", time.Time{}, false
}
