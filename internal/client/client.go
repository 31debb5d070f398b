// Package client 是 exchangett HTTP API 的客户端，walletctl 使用。
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/betbot/exchangett/internal/history"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/internal/web"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// StatusOf 取出错误里的 HTTP 状态码，不是 APIError 时返回 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	client *resty.Client
}

func New(host string) *Client {
	host = strings.TrimSuffix(host, "/")

	// 连接请求会一直等到用户审批，不设客户端超时，由调用方的 ctx 控制
	client := resty.New().
		SetBaseURL(host).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// 只重试幂等的查询
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
		})
	return &Client{client: client}
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "exchangett-walletctl")
	return r
}

// check 把传输错误和非 2xx 响应统一成 error
func check(resp *resty.Response, err error, what string) error {
	if err != nil {
		return errors.Wrap(err, what)
	}
	if resp.IsSuccess() {
		return nil
	}
	var body web.ErrorResponse
	msg := strings.TrimSpace(string(resp.Body()))
	if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return errors.WithMessage(&APIError{Status: resp.StatusCode(), Message: msg}, what)
}

// Session 当前会话
func (c *Client) Session(ctx context.Context) (*web.SessionDTO, error) {
	var out web.SessionDTO
	resp, err := c.newRequest(ctx).SetResult(&out).Get("/api/session")
	if err := check(resp, err, "get session"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connect 发起连接，阻塞到钱包审批结束
func (c *Client) Connect(ctx context.Context) (*web.SessionDTO, error) {
	var out web.SessionDTO
	resp, err := c.newRequest(ctx).SetResult(&out).Post("/api/session/connect")
	if err := check(resp, err, "connect"); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshBalance 刷新余额。会话未就绪时返回 409 的 APIError。
func (c *Client) RefreshBalance(ctx context.Context) (*web.BalanceResponse, error) {
	var out web.BalanceResponse
	resp, err := c.newRequest(ctx).SetResult(&out).Post("/api/session/balance")
	if err := check(resp, err, "refresh balance"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Approvals 等待中的授权请求
func (c *Client) Approvals(ctx context.Context) ([]wallet.ApprovalRequest, error) {
	var out web.ApprovalsResponse
	resp, err := c.newRequest(ctx).SetResult(&out).Get("/api/wallet/approvals")
	if err := check(resp, err, "list approvals"); err != nil {
		return nil, err
	}
	return out.Approvals, nil
}

// Decide 批准或拒绝
func (c *Client) Decide(ctx context.Context, id string, approve bool) error {
	resp, err := c.newRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(web.DecideRequest{Approve: approve}).
		Post("/api/wallet/approvals/" + url.PathEscape(id))
	return check(resp, err, "decide approval")
}

// Balances 余额历史；account 为空返回全部
func (c *Client) Balances(ctx context.Context, account string, limit int) ([]history.Entry, error) {
	var out web.HistoryResponse
	r := c.newRequest(ctx).SetResult(&out)
	if account != "" {
		r.SetQueryParam("account", account)
	}
	if limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := r.Get("/api/balances")
	if err := check(resp, err, "list balances"); err != nil {
		return nil, err
	}
	return out.Balances, nil
}

// Health 服务是否存活
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.newRequest(ctx).Get("/healthz")
	return check(resp, err, "healthz")
}
