package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/gin-gonic/gin"
)

type paramsKeyType string

const paramsKey paramsKeyType = "exchangett_path_params"

// wrap adapts net/http handlers to gin, injecting path params into request context.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := map[string]string{}
		for _, p := range c.Params {
			m[p.Key] = p.Value
		}
		ctx := context.WithValue(c.Request.Context(), paramsKey, m)
		c.Request = c.Request.WithContext(ctx)
		h(c.Writer, c.Request)
	}
}

func pathParam(r *http.Request, key string) string {
	m, _ := r.Context().Value(paramsKey).(map[string]string)
	return m[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor 会话/钱包错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotReady):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrUserRejected):
		return http.StatusForbidden
	case errors.Is(err, session.ErrWalletUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, wallet.ErrApprovalNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
