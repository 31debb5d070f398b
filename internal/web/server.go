// Package web 会话视图的 HTTP 界面：HTML 页面、websocket 推送和 JSON API。
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/betbot/exchangett/internal/history"
	"github.com/betbot/exchangett/internal/metrics"
	"github.com/betbot/exchangett/internal/view"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "web")

// Approvals 待审批请求队列（*wallet.QueueApprover 实现了它）
type Approvals interface {
	Pending() []wallet.ApprovalRequest
	Decide(id string, approve bool) error
}

// History 余额历史（*history.Store 实现了它）
type History interface {
	List(ctx context.Context, account string, limit int) ([]history.Entry, error)
}

// Option 服务选项
type Option func(*Server)

// WithApprovals 开启审批接口
func WithApprovals(a Approvals) Option {
	return func(s *Server) { s.approvals = a }
}

// WithRefreshLimit 限制手动刷新余额的频率，超出返回 429
func WithRefreshLimit(l ratelimit.Limiter) Option {
	return func(s *Server) { s.refreshLimit = l }
}

// WithHistory 开启余额历史接口
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// Server 一个进程一个会话、一个视图
type Server struct {
	v         *view.View
	sess      view.Session
	approvals Approvals
	history   History

	refreshLimit ratelimit.Limiter

	upgrader websocket.Upgrader

	// baseCtx 贯穿服务生命周期，挂载和 websocket 用它而不是请求的 ctx
	baseCtx context.Context
	cancel  context.CancelFunc
	srv     *http.Server
}

// New 创建服务
func New(v *view.View, sess view.Session, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		v:       v,
		sess:    sess,
		baseCtx: ctx,
		cancel:  cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 本地界面
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	sess := api.Group("/session")
	sess.GET("", s.wrap(s.handleSessionGet))
	sess.POST("/connect", s.wrap(s.handleSessionConnect))
	sess.POST("/balance", s.wrap(s.handleSessionBalance))

	approvals := api.Group("/wallet/approvals")
	approvals.GET("", s.wrap(s.handleApprovalsList))
	approvals.POST("/:id", s.wrap(s.handleApprovalDecide))

	api.GET("/balances", s.wrap(s.handleBalances))

	// UI
	r.GET("/", s.wrap(s.handleUI))
	r.GET("/ws", s.wrap(s.handleWS))

	return r
}

// Start 在 addr 上监听，后台提供服务。返回实际监听地址。
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP 服务异常退出: %v", err)
		}
	}()
	log.Infof("HTTP 服务已启动: http://%s", ln.Addr().String())
	return ln.Addr().String(), nil
}

// Shutdown 停止接收请求，断开 websocket，并取消挂载中的连接
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
