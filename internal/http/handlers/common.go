package handlers

import (
	"net/http"
	"strconv"
	"sync"

	intconfig "backend/internal/config"
	"backend/internal/fare"
	"backend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var (
	envMu sync.RWMutex
	env   intconfig.Env
)

// Configure stores process config for the handler layer. Called once by the
// router before any handler runs.
func Configure(e intconfig.Env) {
	envMu.Lock()
	defer envMu.Unlock()
	env = e
}

func currentEnv() intconfig.Env {
	envMu.RLock()
	defer envMu.RUnlock()
	return env
}

func farePolicy() fare.Policy {
	e := currentEnv()
	return fare.NewPolicy(e.PeakMultiplier, e.OffPeakMultiplier)
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return false
	}
	return true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "id tidak valid", nil)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
