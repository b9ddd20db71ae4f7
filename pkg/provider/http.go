package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	xerrors "OpenWeb3-Client/internal/errors"
)

// DefaultHTTPTimeout applies to clients created without a custom http.Client.
// It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// HTTPProvider speaks JSON-RPC 2.0 over a single HTTP endpoint.
type HTTPProvider struct {
	endpoint   *url.URL
	httpClient *http.Client
	headers    http.Header
}

// HTTPOption customises an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithHeader adds a header to every outgoing request.
func WithHeader(key, value string) HTTPOption {
	return func(p *HTTPProvider) {
		p.headers.Set(key, value)
	}
}

// NewHTTPProvider validates the endpoint URL and returns a ready provider.
func NewHTTPProvider(rawURL string, opts ...HTTPOption) (*HTTPProvider, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, fmt.Sprintf("invalid endpoint url %q", rawURL))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "endpoint %q must use http or https", rawURL)
	}
	p := &HTTPProvider{
		endpoint:   parsed,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

type jsonrpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is the error object from a JSON-RPC error response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call implements the Provider interface.
func (p *HTTPProvider) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	payload := jsonrpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, fmt.Sprintf("encode request for %s", method))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransport, err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range p.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransport, err, fmt.Sprintf("perform %s", method))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransport, err, "read response")
	}
	if resp.StatusCode >= 400 {
		return nil, xerrors.Newf(xerrors.CodeTransport, "endpoint returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var decoded jsonrpcResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransport, err, "decode response")
	}
	if decoded.Error != nil {
		return nil, xerrors.Wrap(xerrors.CodeRPC, decoded.Error, method,
			xerrors.WithMetadata("method", method))
	}
	return decoded.Result, nil
}

// IsConnected probes the endpoint with a web3_clientVersion request.
func (p *HTTPProvider) IsConnected(ctx context.Context) bool {
	_, err := p.Call(ctx, probeMethod, nil)
	return err == nil
}

// Close implements the Provider interface. The shared http.Client keeps no
// per-provider state worth tearing down.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
