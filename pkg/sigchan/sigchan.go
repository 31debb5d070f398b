package sigchan

import "sync"

// Chan 是一个非阻塞的信号 channel：只通知"有变化"，不传数据。
// 容量为 1 时多次 Emit 会被合并成一次，适合触发重绘。
type Chan struct {
	c chan struct{}
}

// New 创建新的信号 channel
func New(bufferSize int) *Chan {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Chan{
		c: make(chan struct{}, bufferSize),
	}
}

// Emit 发送信号（非阻塞，满了就丢弃）
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C 返回内部的 channel（用于 select）
func (c *Chan) C() <-chan struct{} {
	return c.c
}

// Group 一组信号 channel，Emit 会通知所有成员
type Group struct {
	mu     sync.RWMutex
	nextID int
	chans  map[int]*Chan
}

// NewGroup 创建 Group
func NewGroup() *Group {
	return &Group{chans: make(map[int]*Chan)}
}

// Add 加入一个新的合并信号 channel，返回取消函数
func (g *Group) Add() (*Chan, func()) {
	c := New(1)
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.chans[id] = c
	g.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.chans, id)
			g.mu.Unlock()
		})
	}
}

// Emit 通知所有成员
func (g *Group) Emit() {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.chans {
		c.Emit()
	}
}

// Len 当前成员数量
func (g *Group) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.chans)
}
