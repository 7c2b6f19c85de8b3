package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/paiban/kebiao/internal/constraints"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Pinger 健康检查依赖
type Pinger interface {
	Health(ctx context.Context) error
}

// SystemHandler 系统端点处理器
type SystemHandler struct {
	build       BuildInfo
	db          Pinger // 未配置数据库时为 nil
	constraints *constraint.Manager
}

// NewSystemHandler 创建系统端点处理器
func NewSystemHandler(build BuildInfo, db Pinger, constraints *constraint.Manager) *SystemHandler {
	return &SystemHandler{build: build, db: db, constraints: constraints}
}

// Health 健康检查
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"service": "kebiao",
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Health(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp["database"] = "ok"
	}

	respondJSON(w, http.StatusOK, resp)
}

// Version 版本信息
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.build)
}

// ConstraintLibrary 返回引擎支持的全部约束定义
func (h *SystemHandler) ConstraintLibrary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, constraints.NewLibraryResponse(h.constraints))
}
