// Package eth is the eth_* namespace of the client facade.
package eth

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	xerrors "OpenWeb3-Client/internal/errors"
	"OpenWeb3-Client/internal/manager"
	"OpenWeb3-Client/pkg/compose"
)

// Module issues eth_* requests through the host's request manager.
type Module struct {
	mgr *manager.Manager
}

// New returns an unattached module.
func New() *Module {
	return &Module{}
}

// Attach implements compose.Capability.
func (m *Module) Attach(host compose.Host, name string) error {
	if host == nil {
		return xerrors.New(xerrors.CodeComposition, "eth module requires a host")
	}
	m.mgr = host.Coordinator()
	return host.Bind(name, m)
}

// Block is the subset of header fields most callers need. Transactions stay
// raw because their shape depends on the fullTx flag.
type Block struct {
	Number       hexutil.Uint64  `json:"number"`
	Hash         common.Hash     `json:"hash"`
	ParentHash   common.Hash     `json:"parentHash"`
	Miner        common.Address  `json:"miner"`
	GasLimit     hexutil.Uint64  `json:"gasLimit"`
	GasUsed      hexutil.Uint64  `json:"gasUsed"`
	Timestamp    hexutil.Uint64  `json:"timestamp"`
	BaseFee      *hexutil.Big    `json:"baseFeePerGas"`
	Transactions json.RawMessage `json:"transactions"`
}

// CallMsg is the argument object for eth_call and eth_estimateGas.
type CallMsg struct {
	From  *common.Address `json:"from,omitempty"`
	To    *common.Address `json:"to,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
}

// BlockNumber returns the height of the most recent block.
func (m *Module) BlockNumber(ctx context.Context) (uint64, error) {
	var out hexutil.Uint64
	if err := m.mgr.Request(ctx, "eth_blockNumber", &out); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// ChainID returns the chain identifier used for replay protection.
func (m *Module) ChainID(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := m.mgr.Request(ctx, "eth_chainId", &out); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// GasPrice returns the node's gas price suggestion in wei.
func (m *Module) GasPrice(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := m.mgr.Request(ctx, "eth_gasPrice", &out); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// GetBalance returns an account balance in wei at the given block tag.
func (m *Module) GetBalance(ctx context.Context, account common.Address, blockTag string) (*big.Int, error) {
	if blockTag == "" {
		blockTag = "latest"
	}
	var out hexutil.Big
	if err := m.mgr.Request(ctx, "eth_getBalance", &out, account, blockTag); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// GetTransactionCount returns an account nonce at the given block tag.
func (m *Module) GetTransactionCount(ctx context.Context, account common.Address, blockTag string) (uint64, error) {
	if blockTag == "" {
		blockTag = "latest"
	}
	var out hexutil.Uint64
	if err := m.mgr.Request(ctx, "eth_getTransactionCount", &out, account, blockTag); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// Accounts lists the accounts the node controls.
func (m *Module) Accounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := m.mgr.Request(ctx, "eth_accounts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBlockByNumber fetches a block by tag or hex number. fullTx switches the
// transactions field between hashes and full objects.
func (m *Module) GetBlockByNumber(ctx context.Context, blockTag string, fullTx bool) (*Block, error) {
	if blockTag == "" {
		blockTag = "latest"
	}
	var out *Block
	if err := m.mgr.Request(ctx, "eth_getBlockByNumber", &out, blockTag, fullTx); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, xerrors.Newf(xerrors.CodeRPC, "block %s not found", blockTag)
	}
	return out, nil
}

// Call executes a read-only contract call at the given block tag.
func (m *Module) Call(ctx context.Context, msg CallMsg, blockTag string) ([]byte, error) {
	if blockTag == "" {
		blockTag = "latest"
	}
	var out hexutil.Bytes
	if err := m.mgr.Request(ctx, "eth_call", &out, msg, blockTag); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas asks the node for a gas estimate of the given message.
func (m *Module) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	var out hexutil.Uint64
	if err := m.mgr.Request(ctx, "eth_estimateGas", &out, msg); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
func (m *Module) SendRawTransaction(ctx context.Context, signed []byte) (common.Hash, error) {
	var out common.Hash
	if err := m.mgr.Request(ctx, "eth_sendRawTransaction", &out, hexutil.Encode(signed)); err != nil {
		return common.Hash{}, err
	}
	return out, nil
}
