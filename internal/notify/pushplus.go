// Package notify delivers rendered messages to the operator's phone
// via the pushplus push provider.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public pushplus endpoint.
const DefaultBaseURL = "https://www.pushplus.plus"

// PushPlusNotifier sends messages through the pushplus HTTP API.
type PushPlusNotifier struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewPushPlusNotifier creates a notifier. The token comes from
// deployment configuration and authenticates against the provider.
func NewPushPlusNotifier(baseURL, token string) *PushPlusNotifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &PushPlusNotifier{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type pushRequest struct {
	Token   string `json:"token"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type pushAck struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send delivers one message. A non-200 response or a provider ack with
// code != 200 is a delivery failure; the caller decides whether that
// matters.
func (n *PushPlusNotifier) Send(ctx context.Context, title, content string) error {
	body, err := json.Marshal(pushRequest{Token: n.token, Title: title, Content: content})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	var ack pushAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("decode push ack: %w", err)
	}
	if ack.Code != 200 {
		return fmt.Errorf("push provider rejected message: code %d, msg %q", ack.Code, ack.Msg)
	}

	return nil
}
