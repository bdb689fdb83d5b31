// Package explorer fetches deployment metadata and bytecode from a
// Blockscout-compatible explorer API, with an RPC fallback for bytecode.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// Client implements DeploymentFetcher against the explorer's REST API.
// Bytecode is fetched through a three tier fallback: the creation
// transaction input for direct deploys, the explorer's stored runtime
// bytecode, and finally eth_getCode via the node.
type Client struct {
	api     string
	http    *http.Client
	rpc     usecase.CodeReader
	retries uint
	log     *slog.Logger
}

// NewClient creates a new explorer client
func NewClient(cfg *config.RuntimeConfig, rpc usecase.CodeReader, log *slog.Logger) *Client {
	retries := cfg.FetchRetries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		api:     strings.TrimRight(cfg.ExplorerAPI, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		rpc:     rpc,
		retries: uint(retries),
		log:     log.With("component", "explorer"),
	}
}

type addressResponse struct {
	IsContract     bool   `json:"is_contract"`
	Name           string `json:"name"`
	CreationTxHash string `json:"creation_transaction_hash"`
	Creator        string `json:"creator_address_hash"`
}

type addressParty struct {
	Hash string `json:"hash"`
}

type transactionResponse struct {
	To       *addressParty `json:"to"`
	RawInput string        `json:"raw_input"`
}

type smartContractResponse struct {
	Name                string          `json:"name"`
	FilePath            string          `json:"file_path"`
	CompilerVersion     string          `json:"compiler_version"`
	OptimizationEnabled bool            `json:"optimization_enabled"`
	OptimizationRuns    int             `json:"optimization_runs"`
	EVMVersion          string          `json:"evm_version"`
	DeployedBytecode    string          `json:"deployed_bytecode"`
	CompilerSettings    json.RawMessage `json:"compiler_settings"`
}

// viaIR reads the via-IR flag out of the verbatim solc settings blob, which
// is the only place the explorer reports it.
func (r *smartContractResponse) viaIR() bool {
	if len(r.CompilerSettings) == 0 {
		return false
	}
	var settings struct {
		ViaIR bool `json:"viaIR"`
	}
	if err := json.Unmarshal(r.CompilerSettings, &settings); err != nil {
		return false
	}
	return settings.ViaIR
}

// FetchDeployment retrieves everything the engine needs to know about one
// deployed contract. Failures map onto the domain taxonomy: addresses
// without code, contracts the explorer never verified, and endpoint faults
// are all distinguishable by the caller.
func (c *Client) FetchDeployment(ctx context.Context, address common.Address) (*models.DeploymentInfo, error) {
	addr := strings.ToLower(address.Hex())

	var addrInfo addressResponse
	found, err := c.getJSON(ctx, "address lookup", c.api+"/addresses/"+addr, &addrInfo)
	if err != nil {
		return nil, err
	}
	if !found || !addrInfo.IsContract {
		return nil, domain.ErrNotAContract
	}

	var sc smartContractResponse
	found, err = c.getJSON(ctx, "smart contract lookup", c.api+"/smart-contracts/"+addr, &sc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotVerified
	}

	settings, err := models.NewCompilerSettings(
		sc.CompilerVersion, sc.OptimizationEnabled, sc.OptimizationRuns, sc.EVMVersion, sc.viaIR())
	if err != nil {
		return nil, fmt.Errorf("invalid compiler settings for %s: %w", addr, err)
	}

	info := &models.DeploymentInfo{
		Address:      address,
		ContractName: firstNonEmpty(sc.Name, addrInfo.Name),
		Verified:     true,
		Settings:     settings,
		FilePath:     sc.FilePath,
		CreationTx:   addrInfo.CreationTxHash,
		Deployer:     addrInfo.Creator,
	}

	// Tier 1: the creation transaction input, which only direct deploys
	// expose as the full creation bytecode.
	if blob, ok := c.creationInput(ctx, addrInfo.CreationTxHash); ok {
		info.Bytecode = blob
		info.Role = models.RoleCreation
		return info, nil
	}

	// Tier 2: runtime bytecode stored by the explorer.
	if sc.DeployedBytecode != "" && sc.DeployedBytecode != "0x" {
		info.Bytecode = sc.DeployedBytecode
		info.Role = models.RoleRuntime
		return info, nil
	}

	// Tier 3: the node itself.
	code, err := c.rpc.CodeAt(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(code) > 0 {
		info.Bytecode = hexutil.Encode(code)
		info.Role = models.RoleRuntime
		return info, nil
	}
	return nil, domain.ErrNoBytecode
}

// creationInput fetches the deployment transaction and returns its input
// when the transaction created the contract directly. Factory deployments
// and lookup failures fall through to the runtime tiers.
func (c *Client) creationInput(ctx context.Context, txHash string) (string, bool) {
	if txHash == "" {
		return "", false
	}
	var tx transactionResponse
	found, err := c.getJSON(ctx, "creation transaction lookup", c.api+"/transactions/"+txHash, &tx)
	if err != nil || !found {
		c.log.Debug("creation transaction unavailable", "tx", txHash, "error", err)
		return "", false
	}
	if tx.To != nil {
		c.log.Debug("factory deployment, using runtime bytecode", "factory", tx.To.Hash)
		return "", false
	}
	if tx.RawInput == "" || tx.RawInput == "0x" {
		return "", false
	}
	return tx.RawInput, true
}

// errNotFound marks a clean 404, which callers translate per endpoint.
var errNotFound = errors.New("not found")

// getJSON performs one GET with retries. Transient upstream faults (5xx,
// rate limiting, connection errors) are retried with jittered backoff;
// anything else fails immediately. Returns found=false on a 404.
func (c *Client) getJSON(ctx context.Context, op, url string, out any) (bool, error) {
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(errNotFound)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("status %s", resp.Status)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(&domain.NetworkError{
					Op:        op,
					Err:       fmt.Errorf("status %s", resp.Status),
					Permanent: true,
				})
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return false, netErr
	}
	return false, &domain.NetworkError{Op: op, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Ensure the adapter implements the interface
var _ usecase.DeploymentFetcher = (*Client)(nil)
