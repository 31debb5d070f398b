package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/betbot/exchangett/internal/history"
	"github.com/betbot/exchangett/internal/metrics"
	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/view"
	"github.com/betbot/exchangett/internal/view/tui"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/internal/web"
	"github.com/betbot/exchangett/pkg/config"
	"github.com/betbot/exchangett/pkg/logger"
	"github.com/betbot/exchangett/pkg/ratelimit"
	"github.com/betbot/exchangett/pkg/shutdown"
	"github.com/joho/godotenv"
)

// 手动刷新余额的上限（定时刷新不受限）
const refreshPerMinute = 30

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", getenv("EXCHANGETT_CONFIG", ""), "YAML config file (optional)")
		mode       = flag.String("mode", "", "view mode: web or tui (overrides config)")
		listen     = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fatal(err)
	}
	if *mode != "" {
		cfg.View.Mode = strings.TrimSpace(*mode)
	}
	if *listen != "" {
		cfg.Server.Listen = strings.TrimSpace(*listen)
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Console:    cfg.View.Mode != config.ModeTUI,
	}); err != nil {
		fatal(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Close()

	if err := run(cfg); err != nil {
		logger.Errorf("exchangett 退出: %v", err)
		logger.Close()
		fatal(err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	sd := shutdown.NewManager()

	w, err := buildWallet(ctx, cfg, sd)
	if err != nil {
		return err
	}

	ctrl := session.New(w.injected(), session.WithOrigin(cfg.Wallet.Origin))

	var hist *history.Store
	if cfg.History.DBPath != "" {
		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		hist = store
		ctrl.OnChange(store)
		sd.OnShutdown("history", func(context.Context) error { return store.Close() })
		logger.Infof("余额历史: %s", cfg.History.DBPath)
	}

	viewOpts := []view.Option{view.WithShowEther(cfg.View.ShowEther)}
	if w.queue != nil {
		viewOpts = append(viewOpts, view.WithApprovals(w.queue))
	}
	v := view.New(ctrl, viewOpts...)
	if w.queue != nil {
		w.queue.OnChange(v.Notify)
	}

	refresher := session.NewRefresher(ctrl, cfg.View.RefreshInterval)
	refresher.Start()
	sd.OnShutdown("refresher", func(context.Context) error { refresher.Stop(); return nil })

	if cfg.Metrics.Listen != "" {
		ms, err := metrics.StartAsync(ctx, cfg.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		logger.Infof("metrics/pprof: http://%s", ms.Addr)
	}

	switch cfg.View.Mode {
	case config.ModeTUI:
		v.Mount(ctx)
		var decider tui.Decider
		if w.queue != nil {
			decider = w.queue
		}
		if err := tui.Run(ctx, v, decider); err != nil {
			stop()
			shutdownAll(sd, v)
			return err
		}
		// q / ctrl+c 会给自己发 SIGINT
		<-ctx.Done()
	default:
		webOpts := []web.Option{web.WithRefreshLimit(ratelimit.NewSlidingWindow(refreshPerMinute, time.Minute))}
		if w.queue != nil {
			webOpts = append(webOpts, web.WithApprovals(w.queue))
		}
		if hist != nil {
			webOpts = append(webOpts, web.WithHistory(hist))
		}
		srv := web.New(v, ctrl, webOpts...)
		addr, err := srv.Start(cfg.Server.Listen)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.Listen, err)
		}
		sd.OnShutdown("http", srv.Shutdown)
		logger.Infof("打开 http://%s 连接钱包", addr)
		<-ctx.Done()
	}

	logger.Info("收到退出信号，开始关闭")
	shutdownAll(sd, v)
	return nil
}

func shutdownAll(sd *shutdown.Manager, v *view.View) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if left := sd.Shutdown(ctx); len(left) > 0 {
		logger.Warnf("未完成的关闭回调: %v", left)
		return
	}
	v.Close()
}

type walletSetup struct {
	ext   *wallet.Extension
	queue *wallet.QueueApprover
}

// injected 没有钱包时必须返回 nil 接口，而不是装着 nil 指针的接口
func (w *walletSetup) injected() wallet.Injected {
	if w.ext == nil {
		return nil
	}
	return w.ext
}

func buildWallet(ctx context.Context, cfg *config.Config, sd *shutdown.Manager) (*walletSetup, error) {
	out := &walletSetup{}

	signer, source, err := loadSigner(cfg.Wallet)
	if err != nil {
		return nil, err
	}
	if signer == nil {
		logger.Warnf("没有配置钱包（WALLET_MNEMONIC / WALLET_PRIVATE_KEY / %s），连接会返回 wallet unavailable", cfg.Wallet.SecretDB)
		return out, nil
	}
	logger.Infof("钱包账户: %s (来源: %s)", signer.Address().Hex(), source)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	chain, err := wallet.DialChain(dialCtx, cfg.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Chain.RPCURL, err)
	}
	sd.OnShutdown("chain", func(context.Context) error { chain.Close(); return nil })

	var approver wallet.Approver = wallet.AutoApprover{}
	if cfg.Wallet.Approval == config.ApprovalQueue {
		out.queue = wallet.NewQueueApprover()
		approver = out.queue
	}
	out.ext, err = wallet.NewExtension(signer, chain, approver)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fatal(err error) {
	if errors.Is(err, tui.ErrNotTerminal) {
		fmt.Fprintln(os.Stderr, "error: tui mode needs a terminal, use -mode web")
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
