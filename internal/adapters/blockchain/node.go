package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

const callTimeout = 30 * time.Second

// NodeReader reads contract code straight from a JSON-RPC node. The
// connection is dialed on first use so runs that never fall back to
// eth_getCode do not pay for one.
type NodeReader struct {
	rpcURL string
	log    *slog.Logger

	mu     sync.Mutex
	client *ethclient.Client
}

// NewNodeReader creates a code reader for the configured RPC endpoint.
func NewNodeReader(cfg *config.RuntimeConfig, log *slog.Logger) *NodeReader {
	return &NodeReader{
		rpcURL: cfg.RPCURL,
		log:    log.With("component", "node"),
	}
}

// CodeAt returns the runtime bytecode currently deployed at address.
func (n *NodeReader) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	client, err := n.connect(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code, err := client.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, &domain.NetworkError{Op: "eth_getCode", Err: err}
	}
	return code, nil
}

func (n *NodeReader) connect(ctx context.Context) (*ethclient.Client, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		return n.client, nil
	}
	if n.rpcURL == "" {
		return nil, &domain.NetworkError{
			Op:        "dial",
			Err:       fmt.Errorf("no RPC endpoint configured"),
			Permanent: true,
		}
	}

	client, err := ethclient.DialContext(ctx, n.rpcURL)
	if err != nil {
		return nil, &domain.NetworkError{Op: "dial", Err: err}
	}
	n.log.Debug("connected to RPC node", "url", n.rpcURL)
	n.client = client
	return client, nil
}

// Ensure the adapter implements the interface
var _ usecase.CodeReader = (*NodeReader)(nil)
