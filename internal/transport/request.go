package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/logging"
)

// maxErrorBody bounds how much of a failed response is kept in an error message.
const maxErrorBody = 4 << 10

// NewJSONRequest builds a request whose body is payload encoded as JSON.
// The body can be replayed, so the request is safe to retry.
func NewJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapParse("json", "request", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}
	return req, nil
}

// PostJSON sends payload to url and decodes the JSON response into target.
func (c *Client) PostJSON(ctx context.Context, url string, payload, target any) error {
	req, err := NewJSONRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(ctx, resp, c.provider, target)
}

// DecodeResponse decodes a JSON response into the target structure.
// Non-2xx responses become an *errors.APIError.
func DecodeResponse(ctx context.Context, resp *http.Response, provider string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.Redacted()
		}
		return statusError(resp, provider, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}

// statusError reads a bounded prefix of the body into an APIError.
func statusError(resp *http.Response, provider, endpoint string) *errors.APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()

	msg := string(bytes.TrimSpace(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &errors.APIError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Endpoint:   endpoint,
	}
}
