package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/api"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
)

// Reply is a decoded proxy response.
type Reply struct {
	Status int
	Body   api.Response
}

// Transport delivers one invocation to the proxy.
type Transport interface {
	Invoke(ctx context.Context, tool string, req api.Request) (*Reply, error)
}

// HTTPTransport posts JSON to a proxy at BaseURL.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates a transport. A nil client means http.DefaultClient;
// no timeout is added on top of the client's own.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Invoke sends exactly one request and never retries.
func (t *HTTPTransport) Invoke(ctx context.Context, tool string, req api.Request) (*Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	url := fmt.Sprintf("%s%s/%s", t.baseURL, api.PathPrefix, tool)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "post %s", tool)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	reply := &Reply{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, &reply.Body); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return reply, nil
}
