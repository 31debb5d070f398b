package client

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/betbot/exchangett/internal/history"
	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/view"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/internal/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type staticChain struct{}

func (staticChain) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return big.NewInt(12345), nil
}

func newServer(t *testing.T) (*Client, *wallet.QueueApprover) {
	t.Helper()
	signer, err := wallet.NewKeySigner(testPrivateKey)
	require.NoError(t, err)
	q := wallet.NewQueueApprover()
	ext, err := wallet.NewExtension(signer, staticChain{}, q)
	require.NoError(t, err)

	store, err := history.Open(":memory:")
	require.NoError(t, err)

	ctrl := session.New(ext)
	ctrl.OnChange(store)
	v := view.New(ctrl, view.WithApprovals(q))
	srv := web.New(v, ctrl, web.WithApprovals(q), web.WithHistory(store))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
		v.Wait()
		_ = store.Close()
	})
	return New(ts.URL + "/"), q
}

func TestClient_EndToEnd(t *testing.T) {
	c, q := newServer(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	_, err := c.RefreshBalance(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, StatusOf(err))

	s, err := c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "disconnected", s.Status)

	connected := make(chan error, 1)
	go func() {
		_, err := c.Connect(ctx)
		connected <- err
	}()

	var pending []wallet.ApprovalRequest
	require.Eventually(t, func() bool {
		pending, err = c.Approvals(ctx)
		return err == nil && len(pending) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, q.Pending(), 1)

	err = c.Decide(ctx, "missing", true)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	require.NoError(t, c.Decide(ctx, pending[0].ID, true))
	require.NoError(t, <-connected)

	bal, err := c.RefreshBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345", bal.Balance)

	rows, err := c.Balances(ctx, bal.Address, 5)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "12345", rows[0].Balance)
}

func TestClient_RejectedConnect(t *testing.T) {
	c, q := newServer(t)
	ctx := context.Background()

	connected := make(chan error, 1)
	go func() {
		_, err := c.Connect(ctx)
		connected <- err
	}()
	require.Eventually(t, func() bool { return len(q.Pending()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, q.Decide(q.Pending()[0].ID, false))

	err := <-connected
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Contains(t, err.Error(), "rejected")
}

func TestClient_RetriesGetOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"connected","connected":true,"balance":"7"}`))
	}))
	defer ts.Close()

	s, err := New(ts.URL).Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", s.Balance)
	assert.Equal(t, int32(2), calls.Load())
}
