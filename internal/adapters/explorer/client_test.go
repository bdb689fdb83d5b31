package explorer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

var testAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")

const testAddrHex = "0x1000000000000000000000000000000000000001"

type fakeCodeReader struct {
	code []byte
	err  error
}

func (f *fakeCodeReader) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	return f.code, f.err
}

func newTestClient(t *testing.T, handler http.Handler, rpc *fakeCodeReader) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	if rpc == nil {
		rpc = &fakeCodeReader{}
	}
	cfg := &config.RuntimeConfig{ExplorerAPI: srv.URL, FetchRetries: 2}
	return NewClient(cfg, rpc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func addressJSON(isContract bool, creationTx string) string {
	return fmt.Sprintf(`{
		"is_contract": %t,
		"name": "Token",
		"creation_transaction_hash": %q,
		"creator_address_hash": "0xdeadbeef00000000000000000000000000000001"
	}`, isContract, creationTx)
}

const smartContractJSON = `{
	"name": "Token",
	"file_path": "src/Token.sol",
	"compiler_version": "v0.8.24+commit.e11b9ed9",
	"optimization_enabled": true,
	"optimization_runs": 200,
	"evm_version": "cancun",
	"deployed_bytecode": "0x6080604052aabb",
	"compiler_settings": {"viaIR": true, "optimizer": {"enabled": true, "runs": 200}}
}`

func TestFetchDeployment(t *testing.T) {
	ctx := context.Background()

	t.Run("direct deploy yields creation bytecode and settings", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(true, "0xabc123"))
		})
		mux.HandleFunc("/smart-contracts/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, smartContractJSON)
		})
		mux.HandleFunc("/transactions/0xabc123", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"to": null, "raw_input": "0x60806040deploycode"}`)
		})
		client := newTestClient(t, mux, nil)

		info, err := client.FetchDeployment(ctx, testAddr)

		require.NoError(t, err)
		assert.Equal(t, "Token", info.ContractName)
		assert.True(t, info.Verified)
		assert.Equal(t, models.RoleCreation, info.Role)
		assert.Equal(t, "0x60806040deploycode", info.Bytecode)
		assert.Equal(t, "src/Token.sol", info.FilePath)
		assert.Equal(t, "v0.8.24+commit.e11b9ed9", info.Settings.Version)
		assert.True(t, info.Settings.OptimizerEnabled)
		assert.Equal(t, 200, info.Settings.OptimizerRuns)
		assert.Equal(t, "cancun", info.Settings.EVMVersion)
		assert.True(t, info.Settings.ViaIR)
	})

	t.Run("factory deploy falls back to explorer runtime bytecode", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(true, "0xabc123"))
		})
		mux.HandleFunc("/smart-contracts/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, smartContractJSON)
		})
		mux.HandleFunc("/transactions/0xabc123", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"to": {"hash": "0xfac70000000000000000000000000000000000aa"}, "raw_input": "0xdeadbeef"}`)
		})
		client := newTestClient(t, mux, nil)

		info, err := client.FetchDeployment(ctx, testAddr)

		require.NoError(t, err)
		assert.Equal(t, models.RoleRuntime, info.Role)
		assert.Equal(t, "0x6080604052aabb", info.Bytecode)
	})

	t.Run("a broken transaction lookup falls through to runtime", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(true, "0xabc123"))
		})
		mux.HandleFunc("/smart-contracts/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, smartContractJSON)
		})
		mux.HandleFunc("/transactions/0xabc123", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		client := newTestClient(t, mux, nil)

		info, err := client.FetchDeployment(ctx, testAddr)

		require.NoError(t, err)
		assert.Equal(t, models.RoleRuntime, info.Role)
	})

	t.Run("node code is the last resort", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(true, ""))
		})
		mux.HandleFunc("/smart-contracts/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, strings.Replace(smartContractJSON, `"0x6080604052aabb"`, `""`, 1))
		})
		client := newTestClient(t, mux, &fakeCodeReader{code: []byte{0x60, 0x80, 0xff}})

		info, err := client.FetchDeployment(ctx, testAddr)

		require.NoError(t, err)
		assert.Equal(t, models.RoleRuntime, info.Role)
		assert.Equal(t, "0x6080ff", info.Bytecode)
	})

	t.Run("no bytecode from any tier", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(true, ""))
		})
		mux.HandleFunc("/smart-contracts/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, strings.Replace(smartContractJSON, `"0x6080604052aabb"`, `"0x"`, 1))
		})
		client := newTestClient(t, mux, &fakeCodeReader{})

		_, err := client.FetchDeployment(ctx, testAddr)

		assert.ErrorIs(t, err, domain.ErrNoBytecode)
	})

	t.Run("EOA addresses are not contracts", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(false, ""))
		})
		client := newTestClient(t, mux, nil)

		_, err := client.FetchDeployment(ctx, testAddr)

		assert.ErrorIs(t, err, domain.ErrNotAContract)
	})

	t.Run("unknown addresses are not contracts", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler(), nil)

		_, err := client.FetchDeployment(ctx, testAddr)

		assert.ErrorIs(t, err, domain.ErrNotAContract)
	})

	t.Run("contracts without verified source are unverified", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, addressJSON(true, ""))
		})
		client := newTestClient(t, mux, nil)

		_, err := client.FetchDeployment(ctx, testAddr)

		assert.ErrorIs(t, err, domain.ErrNotVerified)
	})
}

func TestGetJSONRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("server errors are retried", func(t *testing.T) {
		attempts := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, addressJSON(false, ""))
		})
		client := newTestClient(t, mux, nil)

		_, err := client.FetchDeployment(ctx, testAddr)

		assert.ErrorIs(t, err, domain.ErrNotAContract)
		assert.Equal(t, 2, attempts)
	})

	t.Run("exhausted retries surface a transient network error", func(t *testing.T) {
		attempts := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		client := newTestClient(t, mux, nil)

		_, err := client.FetchDeployment(ctx, testAddr)

		var netErr *domain.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.False(t, netErr.Permanent)
		assert.Equal(t, 2, attempts)
	})

	t.Run("client errors fail immediately as permanent", func(t *testing.T) {
		attempts := 0
		mux := http.NewServeMux()
		mux.HandleFunc("/addresses/"+testAddrHex, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusUnauthorized)
		})
		client := newTestClient(t, mux, nil)

		_, err := client.FetchDeployment(ctx, testAddr)

		var netErr *domain.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, netErr.Permanent)
		assert.Equal(t, 1, attempts)
	})
}
