package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/betbot/exchangett/internal/history"
	"github.com/betbot/exchangett/internal/view"
	"github.com/betbot/exchangett/internal/wallet"
)

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	// 首次渲染时挂载：后台发起连接，页面不等审批
	s.v.Mount(s.baseCtx)

	var buf bytes.Buffer
	if err := view.RenderHTML(&buf, s.v.Page()); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("render: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionDTO(s.sess.State()))
}

func (s *Server) handleSessionConnect(w http.ResponseWriter, r *http.Request) {
	// 可能一直等用户审批，请求断开即取消
	err := s.v.Connect(r.Context())
	dto := toSessionDTO(s.sess.State())
	if err != nil {
		writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Session: &dto})
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleSessionBalance(w http.ResponseWriter, r *http.Request) {
	if s.refreshLimit != nil && !s.refreshLimit.Allow() {
		writeError(w, http.StatusTooManyRequests, "balance refresh rate limited")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	bal, err := s.v.Refresh(ctx)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Address: s.sess.State().Address, Balance: bal.String()})
}

func (s *Server) handleApprovalsList(w http.ResponseWriter, r *http.Request) {
	resp := ApprovalsResponse{Approvals: []wallet.ApprovalRequest{}}
	if s.approvals != nil {
		resp.Approvals = append(resp.Approvals, s.approvals.Pending()...)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprovalDecide(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(pathParam(r, "id"))
	if s.approvals == nil {
		writeError(w, http.StatusNotFound, "approvals are not enabled")
		return
	}
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if err := s.approvals.Decide(id, req.Approve); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "approve": req.Approve})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "balance history is not enabled")
		return
	}
	account := strings.TrimSpace(r.URL.Query().Get("account"))
	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := s.history.List(ctx, account, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("db list balances: %v", err))
		return
	}
	if items == nil {
		items = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Account: account, Balances: items})
}
