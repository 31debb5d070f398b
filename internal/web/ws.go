package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/betbot/exchangett/internal/metrics"
	"github.com/betbot/exchangett/internal/view"
	"github.com/gorilla/websocket"
)

const (
	pingInterval = 10 * time.Second
	readTimeout  = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// handleWS 每次状态变化推送重新渲染的 #app 片段
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	metrics.WSClients.Inc()
	defer metrics.WSClients.Dec()

	redraw, cancel := s.v.Watch()
	defer cancel()

	// 读循环只用来发现断开和处理 pong
	closed := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	if err := s.pushFragment(conn); err != nil {
		return
	}
	for {
		select {
		case <-s.baseCtx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(writeTimeout))
			return
		case <-closed:
			return
		case <-redraw:
			if err := s.pushFragment(conn); err != nil {
				log.Debugf("websocket push: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (s *Server) pushFragment(conn *websocket.Conn) error {
	var buf bytes.Buffer
	if err := view.RenderFragment(&buf, s.v.Page()); err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, buf.Bytes())
}
