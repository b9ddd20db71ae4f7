package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	xerrors "OpenWeb3-Client/internal/errors"
)

// DialProvider wraps a go-ethereum rpc.Client, which covers the ws://,
// wss:// and IPC endpoints the plain HTTP provider does not reach.
type DialProvider struct {
	endpoint string
	rpc      *gethrpc.Client
}

// Dial connects to an RPC endpoint. The scheme selects the transport the
// same way geth does (http, ws, or a filesystem path for IPC).
func Dial(ctx context.Context, endpoint string) (*DialProvider, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "endpoint cannot be empty")
	}
	client, err := gethrpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeTransport, err, fmt.Sprintf("dial %s", endpoint))
	}
	return &DialProvider{endpoint: endpoint, rpc: client}, nil
}

// Endpoint returns the dialed endpoint string.
func (p *DialProvider) Endpoint() string {
	return p.endpoint
}

// Call implements the Provider interface.
func (p *DialProvider) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := p.rpc.CallContext(ctx, &result, method, params...); err != nil {
		if _, ok := err.(gethrpc.Error); ok {
			return nil, xerrors.Wrap(xerrors.CodeRPC, err, method,
				xerrors.WithMetadata("method", method))
		}
		return nil, xerrors.Wrap(xerrors.CodeTransport, err, fmt.Sprintf("perform %s", method))
	}
	return result, nil
}

// IsConnected probes the endpoint with a web3_clientVersion request.
func (p *DialProvider) IsConnected(ctx context.Context) bool {
	_, err := p.Call(ctx, probeMethod, nil)
	return err == nil
}

// Close terminates the underlying connection.
func (p *DialProvider) Close() error {
	p.rpc.Close()
	return nil
}
