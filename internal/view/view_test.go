package view

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

type countingChain struct {
	balance *big.Int
	calls   atomic.Int32
}

func (c *countingChain) BalanceAt(_ context.Context, _ common.Address, block *big.Int) (*big.Int, error) {
	c.calls.Add(1)
	return new(big.Int).Set(c.balance), nil
}

// slowChain 第一次查询立即返回，之后的查询要等 delay，期间遵守 ctx
type slowChain struct {
	balance *big.Int
	delay   time.Duration
	calls   atomic.Int32
}

func (c *slowChain) BalanceAt(ctx context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if c.calls.Add(1) > 1 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("eth_getBalance: %w", ctx.Err())
		}
	}
	return new(big.Int).Set(c.balance), nil
}

func newSession(t *testing.T, balance string, approver wallet.Approver) (*session.Controller, *countingChain) {
	t.Helper()
	wei, ok := new(big.Int).SetString(balance, 10)
	require.True(t, ok)
	signer, err := wallet.NewKeySigner(testPrivateKey)
	require.NoError(t, err)
	chain := &countingChain{balance: wei}
	ext, err := wallet.NewExtension(signer, chain, approver)
	require.NoError(t, err)
	return session.New(ext), chain
}

func TestView_MountConnectsAndRendersBalance(t *testing.T) {
	c, _ := newSession(t, "1000000000000000000", nil)
	v := New(c)

	v.Mount(context.Background())
	v.Wait()

	st := c.State()
	assert.Equal(t, testAddress, st.Address)
	assert.NotNil(t, st.Signer)
	assert.NotNil(t, st.Provider)

	text := v.Text()
	assert.Contains(t, text, "balance: 1000000000000000000")
	assert.Contains(t, text, testAddress)
	assert.NotContains(t, text, "[Connect]")
	assert.Contains(t, text, "[Place market order]")
	assert.True(t, strings.HasPrefix(text, "ExchangeTT | portfolio | help | "))
}

func TestView_AddressChangeTriggersOneExtraFetch(t *testing.T) {
	c, chain := newSession(t, "7", nil)
	v := New(c)

	v.Mount(context.Background())
	v.Mount(context.Background())
	v.Wait()
	// connect 内部一次，加上地址变化触发一次
	assert.Equal(t, int32(2), chain.calls.Load())

	// 地址没变，不会再触发额外的查询
	require.NoError(t, v.Connect(context.Background()))
	v.Wait()
	assert.Equal(t, int32(3), chain.calls.Load())
}

func TestView_NoWalletShowsConnectAndError(t *testing.T) {
	v := New(session.New(nil))
	v.Mount(context.Background())
	v.Wait()

	p := v.Page()
	assert.True(t, p.ShowConnect())
	assert.Equal(t, "0", p.Balance)
	assert.Equal(t, session.ErrWalletUnavailable.Error(), p.Error)
	assert.Contains(t, v.Text(), "[Connect]")
	assert.Contains(t, v.Text(), "balance: 0")
}

func TestView_ShowEther(t *testing.T) {
	c, _ := newSession(t, "1500000000000000000", nil)
	v := New(c, WithShowEther(true))
	require.NoError(t, v.Connect(context.Background()))
	v.Wait()

	p := v.Page()
	assert.Equal(t, "1500000000000000000", p.Balance)
	assert.Equal(t, "1.5", p.BalanceEther)
	assert.Contains(t, p.Text(), "≈ 1.5 ETH")
}

func TestView_PendingApprovalIsRendered(t *testing.T) {
	q := wallet.NewQueueApprover()
	c, _ := newSession(t, "1", q)
	v := New(c, WithApprovals(q))
	q.OnChange(v.Notify)

	redraw, cancel := v.Watch()
	defer cancel()

	v.Mount(context.Background())

	var p Page
	deadline := time.After(2 * time.Second)
	for p.Approval == nil {
		select {
		case <-redraw:
			p = v.Page()
		case <-deadline:
			t.Fatalf("approval never rendered")
		}
	}
	assert.Equal(t, testAddress, p.Approval.Account)
	assert.Contains(t, p.Text(), "approval pending")

	require.NoError(t, q.Decide(p.Approval.ID, true))
	v.Wait()
	assert.Nil(t, v.Page().Approval)
	assert.Equal(t, testAddress, v.Page().Address)
}

func TestView_WatchSignalsOnChange(t *testing.T) {
	c, _ := newSession(t, "1", nil)
	v := New(c)
	redraw, cancel := v.Watch()

	require.NoError(t, v.Connect(context.Background()))
	select {
	case <-redraw:
	default:
		t.Fatalf("expected a redraw signal")
	}
	cancel()
	v.Wait()
}

func TestRenderHTML(t *testing.T) {
	c, _ := newSession(t, "1000000000000000000", nil)
	v := New(c)
	v.Mount(context.Background())
	v.Wait()

	var full, frag bytes.Buffer
	require.NoError(t, RenderHTML(&full, v.Page()))
	require.NoError(t, RenderFragment(&frag, v.Page()))

	assert.Contains(t, full.String(), "<title>ExchangeTT</title>")
	assert.Contains(t, full.String(), "balance: 1000000000000000000")
	assert.Contains(t, frag.String(), testAddress)
	assert.Contains(t, frag.String(), "Place market order")
	assert.NotContains(t, frag.String(), "<html>")

	empty := Page{Brand: Brand, Links: navLinks, Balance: "0", OrderTitle: OrderTitle}
	frag.Reset()
	require.NoError(t, RenderFragment(&frag, empty))
	assert.Contains(t, frag.String(), `id="connect"`)
}

func TestView_WatcherFetchOutlivesCallerContext(t *testing.T) {
	signer, err := wallet.NewKeySigner(testPrivateKey)
	require.NoError(t, err)
	chain := &slowChain{balance: big.NewInt(42), delay: 50 * time.Millisecond}
	ext, err := wallet.NewExtension(signer, chain, nil)
	require.NoError(t, err)
	c := session.New(ext)
	v := New(c)
	defer v.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, v.Connect(ctx))
	// 和 HTTP 请求一样，调用方返回后 ctx 立即结束
	cancel()
	v.Wait()

	st := c.State()
	assert.Equal(t, int32(2), chain.calls.Load())
	assert.NoError(t, st.LastError)
	assert.Equal(t, "42", st.Balance.String())
	assert.Empty(t, v.Page().Error)
}

func TestView_CloseStopsBackgroundWork(t *testing.T) {
	c, chain := newSession(t, "7", nil)
	v := New(c)
	v.Close()
	v.Close()

	v.Mount(context.Background())
	v.Wait()
	assert.Equal(t, int32(0), chain.calls.Load())

	// 关闭后用户仍可手动连接，但不再启动额外的后台查询
	require.NoError(t, v.Connect(context.Background()))
	v.Wait()
	assert.Equal(t, int32(1), chain.calls.Load())
	assert.Equal(t, "7", c.State().Balance.String())
}

func TestView_CloseCancelsPendingMount(t *testing.T) {
	q := wallet.NewQueueApprover()
	c, chain := newSession(t, "7", q)
	v := New(c)

	v.Mount(context.Background())
	require.Eventually(t, func() bool { return len(q.Pending()) == 1 }, 2*time.Second, 5*time.Millisecond)

	closed := make(chan struct{})
	go func() {
		v.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the pending connect")
	}
	assert.Equal(t, int32(0), chain.calls.Load())
	assert.Equal(t, session.Disconnected, c.State().Status)
}
