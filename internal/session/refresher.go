package session

import (
	"context"
	"sync"
	"time"
)

// Refresher 定时刷新已连接会话的余额；未连接时跳过
type Refresher struct {
	c        *Controller
	interval time.Duration
	timeout  time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewRefresher 创建定时刷新器
func NewRefresher(c *Controller, interval time.Duration) *Refresher {
	return &Refresher{
		c:        c,
		interval: interval,
		timeout:  10 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start 启动后台刷新（interval<=0 时不启动）
func (r *Refresher) Start() {
	if r.interval <= 0 {
		return
	}
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.loop()
		log.Infof("[Refresher] 每 %v 刷新一次余额", r.interval)
	})
}

// Stop 停止并等待后台任务退出
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
}

func (r *Refresher) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refreshOnce()
		}
	}
}

func (r *Refresher) refreshOnce() {
	if r.c.State().Status != Connected {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.c.GetBalance(ctx); err != nil {
		log.Debugf("[Refresher] 刷新失败: %v", err)
	}
}
