package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "exchangett"

// 结果标签
const (
	ResultOK          = "ok"
	ResultUnavailable = "unavailable"
	ResultRejected    = "rejected"
	ResultNotReady    = "not_ready"
	ResultError       = "error"
)

var (
	// ConnectTotal 钱包连接次数（按结果）
	ConnectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "connect_total",
		Help:      "Wallet connect attempts by result.",
	}, []string{"result"})

	// BalanceFetchTotal 余额查询次数（按结果）
	BalanceFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "balance_fetch_total",
		Help:      "Balance queries by result.",
	}, []string{"result"})

	// BalanceFetchSeconds 余额查询耗时
	BalanceFetchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "balance_fetch_seconds",
		Help:      "Latency of provider balance queries.",
		Buckets:   prometheus.DefBuckets,
	})

	// PendingApprovals 等待用户决定的授权请求数
	PendingApprovals = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "wallet",
		Name:      "pending_approvals",
		Help:      "Origin authorization requests waiting for a decision.",
	})

	// WSClients 当前 websocket 连接数
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "web",
		Name:      "ws_clients",
		Help:      "Connected live-update websocket clients.",
	})
)
