package server

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openwater/aquabill/internal/actorctx"
	"go.uber.org/zap"
)

// actorHeader carries the operator identity resolved by the edge proxy.
const actorHeader = "X-Actor-ID"

// ActorMiddleware moves the operator identity from the request header into
// the request context. Mutating endpoints reject requests without one.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := strings.TrimSpace(c.GetHeader(actorHeader))
		if actorID != "" {
			ctx := actorctx.WithActorID(c.Request.Context(), actorID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// SubmitRateLimit throttles reading submissions per operator and holds the
// per-connection lock for the duration of the request.
func (s *Server) SubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		actorID, ok := actorctx.ActorIDFromContext(ctx)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		allowed, err := s.limiter.AllowActor(ctx, actorID)
		if err != nil {
			s.log.Warn("submit rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}

		connectionID, err := readSubmitConnectionID(c)
		if err != nil {
			s.log.Warn("submit rate limit read body failed", zap.Error(err))
			AbortWithError(c, invalidRequestError())
			return
		}
		if connectionID == "" {
			c.Next()
			return
		}

		token, ok, err := s.limiter.TryLockConnection(ctx, connectionID)
		if err != nil {
			s.log.Warn("submit concurrency lock failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !ok {
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}
		defer func() {
			if err := s.limiter.ReleaseConnection(ctx, connectionID, token); err != nil {
				s.log.Warn("submit concurrency unlock failed", zap.Error(err))
			}
		}()

		c.Next()
	}
}

// readSubmitConnectionID peeks at the request body for the connection the
// submission targets, then restores the body for the handler.
func readSubmitConnectionID(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return "", nil
	}

	var payload struct {
		ConnectionID string `json:"connection_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}
	return strings.TrimSpace(payload.ConnectionID), nil
}
