package usecase_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// MockAddressSource is a mock implementation of AddressSource
type MockAddressSource struct {
	mock.Mock
}

func (m *MockAddressSource) All(ctx context.Context) ([]models.ContractRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContractRequest), args.Error(1)
}

func (m *MockAddressSource) FromFile(ctx context.Context, path string) ([]models.ContractRequest, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContractRequest), args.Error(1)
}

func (m *MockAddressSource) FromChangedFile(ctx context.Context, path string) ([]models.ContractRequest, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContractRequest), args.Error(1)
}

func TestCollectCandidates(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RuntimeConfig{}

	t.Run("all mode delegates to the address source", func(t *testing.T) {
		source := new(MockAddressSource)
		want := []models.ContractRequest{
			{Alias: "Token", Address: common.HexToAddress("0x1000000000000000000000000000000000000001")},
		}
		source.On("All", ctx).Return(want, nil)

		got, err := usecase.NewCollectCandidates(cfg, source).Run(ctx, usecase.CollectCandidatesParams{All: true})

		require.NoError(t, err)
		assert.Equal(t, want, got)
		source.AssertExpectations(t)
	})

	t.Run("address mode builds a single candidate", func(t *testing.T) {
		source := new(MockAddressSource)

		got, err := usecase.NewCollectCandidates(cfg, source).Run(ctx, usecase.CollectCandidatesParams{
			Address: "0x1000000000000000000000000000000000000001",
			Name:    "MyToken",
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "MyToken", got[0].Alias)
		assert.Equal(t, common.HexToAddress("0x1000000000000000000000000000000000000001"), got[0].Address)
	})

	t.Run("address mode falls back to the address as alias", func(t *testing.T) {
		source := new(MockAddressSource)

		got, err := usecase.NewCollectCandidates(cfg, source).Run(ctx, usecase.CollectCandidatesParams{
			Address: "0xAbCd000000000000000000000000000000000001",
		})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "0xabcd000000000000000000000000000000000001", got[0].Alias)
	})

	t.Run("invalid and zero addresses are rejected", func(t *testing.T) {
		source := new(MockAddressSource)
		uc := usecase.NewCollectCandidates(cfg, source)

		_, err := uc.Run(ctx, usecase.CollectCandidatesParams{Address: "0xnothex"})
		assert.ErrorContains(t, err, "invalid address")

		_, err = uc.Run(ctx, usecase.CollectCandidatesParams{
			Address: "0x0000000000000000000000000000000000000000",
		})
		assert.ErrorContains(t, err, "zero address")
	})

	t.Run("file and changed-file modes pass the path through", func(t *testing.T) {
		source := new(MockAddressSource)
		source.On("FromFile", ctx, "addresses/extra.json").Return([]models.ContractRequest{}, nil)
		source.On("FromChangedFile", ctx, "changed.json").Return([]models.ContractRequest{}, nil)
		uc := usecase.NewCollectCandidates(cfg, source)

		_, err := uc.Run(ctx, usecase.CollectCandidatesParams{File: "addresses/extra.json"})
		require.NoError(t, err)
		_, err = uc.Run(ctx, usecase.CollectCandidatesParams{ChangedFile: "changed.json"})
		require.NoError(t, err)
		source.AssertExpectations(t)
	})

	t.Run("exactly one mode must be selected", func(t *testing.T) {
		source := new(MockAddressSource)
		uc := usecase.NewCollectCandidates(cfg, source)

		_, err := uc.Run(ctx, usecase.CollectCandidatesParams{})
		assert.ErrorContains(t, err, "exactly one of")

		_, err = uc.Run(ctx, usecase.CollectCandidatesParams{All: true, File: "x.json"})
		assert.ErrorContains(t, err, "exactly one of")
	})
}
