package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	balances map[common.Address]*big.Int
	err      error
	calls    int
}

func (f *fakeChain) BalanceAt(_ context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if blockNumber != nil {
		return nil, errors.New("expected latest block")
	}
	if b, ok := f.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func newTestExtension(t *testing.T, approver Approver) (*Extension, *fakeChain) {
	t.Helper()
	s, err := NewKeySigner(testPrivateKey)
	require.NoError(t, err)
	chain := &fakeChain{balances: map[common.Address]*big.Int{s.Address(): big.NewInt(42)}}
	ext, err := NewExtension(s, chain, approver)
	require.NoError(t, err)
	return ext, chain
}

func TestExtension_AuthorizeApproved(t *testing.T) {
	ext, chain := newTestExtension(t, nil)
	ctx := context.Background()

	p, err := ext.Authorize(ctx, "http://localhost:8080/")
	require.NoError(t, err)

	s, err := p.Signer(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAddress, s.Address().Hex())

	bal, err := p.BalanceAt(ctx, s.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())
	assert.Equal(t, 1, chain.calls)
}

func TestExtension_RejectedAndRemembered(t *testing.T) {
	asked := 0
	answer := false
	ext, _ := newTestExtension(t, ApproverFunc(func(_ context.Context, req ApprovalRequest) (bool, error) {
		asked++
		assert.Equal(t, "http://localhost:8080", req.Origin)
		assert.Equal(t, testAddress, req.Account)
		return answer, nil
	}))
	ctx := context.Background()

	_, err := ext.Authorize(ctx, "http://localhost:8080")
	require.ErrorIs(t, err, ErrUserRejected)

	answer = true
	_, err = ext.Authorize(ctx, "HTTP://LOCALHOST:8080")
	require.NoError(t, err)
	_, err = ext.Authorize(ctx, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, 2, asked, "approved origin should not be asked again")

	ext.Revoke("http://localhost:8080")
	_, err = ext.Authorize(ctx, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, 3, asked)
}

func TestExtension_ApproverError(t *testing.T) {
	boom := errors.New("boom")
	ext, _ := newTestExtension(t, ApproverFunc(func(context.Context, ApprovalRequest) (bool, error) {
		return false, boom
	}))
	_, err := ext.Authorize(context.Background(), "o")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrUserRejected)

	_, err = ext.Authorize(context.Background(), "  ")
	require.Error(t, err)
}

func TestNewExtension_RequiresParts(t *testing.T) {
	s, err := NewKeySigner(testPrivateKey)
	require.NoError(t, err)
	_, err = NewExtension(nil, &fakeChain{}, nil)
	require.Error(t, err)
	_, err = NewExtension(s, nil, nil)
	require.Error(t, err)
}

func TestProvider_BalanceError(t *testing.T) {
	chain := &fakeChain{err: errors.New("rpc down")}
	s, err := NewKeySigner(testPrivateKey)
	require.NoError(t, err)
	_, err = NewProvider(chain, s).BalanceAt(context.Background(), s.Address())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc down")
}
