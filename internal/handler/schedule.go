// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/paiban/kebiao/internal/repository"
	"github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/calendar"
	"github.com/paiban/kebiao/pkg/stats"
	"github.com/paiban/kebiao/pkg/swap"
	"github.com/paiban/kebiao/pkg/validator"
)

// defaultMaxBodyBytes 请求体大小上限
const defaultMaxBodyBytes = 1 << 20

// Generator 课表生成器
type Generator interface {
	Generate(ctx context.Context, in *model.Input) (*model.Result, error)
}

// ScheduleHandler 排课处理器
type ScheduleHandler struct {
	generator    Generator
	plans        repository.PlanRepositoryInterface // 未配置数据库时为 nil
	detector     *validator.ConflictDetector
	fairness     *stats.FairnessAnalyzer
	coverage     *stats.CoverageAnalyzer
	swaps        *swap.SwapEvaluator
	recommender  *swap.Recommender
	maxBodyBytes int64
}

// NewScheduleHandler 创建排课处理器
func NewScheduleHandler(generator Generator, plans repository.PlanRepositoryInterface, maxBodyBytes int64) *ScheduleHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	detector := validator.NewConflictDetector(nil)
	return &ScheduleHandler{
		generator:    generator,
		plans:        plans,
		detector:     detector,
		fairness:     stats.NewFairnessAnalyzer(),
		coverage:     stats.NewCoverageAnalyzer(),
		swaps:        swap.NewSwapEvaluator(detector),
		recommender:  swap.NewRecommender(detector),
		maxBodyBytes: maxBodyBytes,
	}
}

// GenerateResponse 课表生成响应
type GenerateResponse struct {
	Success    bool             `json:"success"`
	SolveID    string           `json:"solve_id"`
	Days       []string         `json:"days"`
	Timetable  model.Timetable  `json:"timetable"`
	Statistics model.Statistics `json:"statistics"`
	Duration   string           `json:"duration"`
}

// FailureResponse 失败响应
type FailureResponse struct {
	Success bool `json:"success"`
	errors.Failure
}

// ValidateRequest 课表验证/统计请求
type ValidateRequest struct {
	Input     model.Input     `json:"input"`
	Timetable model.Timetable `json:"timetable"`
}

// ValidateResponse 课表验证响应
type ValidateResponse struct {
	IsValid   bool                           `json:"is_valid"`
	Conflicts []validator.Conflict           `json:"conflicts"`
	Summary   map[validator.ConflictType]int `json:"summary"`
}

// AnalyzeResponse 课表统计响应
type AnalyzeResponse struct {
	Days     []string               `json:"days"`
	Fairness *stats.FairnessMetrics `json:"fairness"`
	Coverage *stats.CoverageMetrics `json:"coverage"`
}

// SwapRequest 调课请求
type SwapRequest struct {
	ValidateRequest
	swap.SwapRequest
}

// RecommendRequest 调课推荐请求
type RecommendRequest struct {
	ValidateRequest
	Source  int                    `json:"source"`
	Options *swap.RecommendOptions `json:"options,omitempty"`
}

// RecommendResponse 调课推荐响应
type RecommendResponse struct {
	Source          int                   `json:"source"`
	Recommendations []swap.Recommendation `json:"recommendations"`
}

// Generate 按请求体中的输入生成课表
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in model.Input
	if err := h.decode(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	h.generate(w, r, &in)
}

// GenerateFromPlan 按已保存的排课方案生成课表
func (h *ScheduleHandler) GenerateFromPlan(w http.ResponseWriter, r *http.Request) {
	if h.plans == nil {
		respondError(w, r, errors.New(errors.CodeUnavailable, "未配置数据库，无法读取排课方案"))
		return
	}

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondError(w, r, errors.Wrap(err, errors.CodeInvalidInput, "无效的方案ID格式"))
		return
	}

	in, err := h.plans.LoadInput(r.Context(), planID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Debug().
		Str("plan_id", planID.String()).
		Int("courses", len(in.Courses)).
		Msg("已读取排课方案")

	h.generate(w, r, in)
}

func (h *ScheduleHandler) generate(w http.ResponseWriter, r *http.Request, in *model.Input) {
	result, err := h.generator.Generate(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:    true,
		SolveID:    result.SolveID.String(),
		Days:       result.Days,
		Timetable:  result.Timetable,
		Statistics: result.Statistics,
		Duration:   result.Duration.String(),
	})
}

// Validate 检查已有课表是否满足全部硬约束
func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cal, err := calendar.Build(req.Input.WorkingDays)
	if err != nil {
		respondError(w, r, err)
		return
	}

	conflicts := h.detector.DetectAll(req.Timetable, cal, &req.Input)
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		IsValid:   len(conflicts) == 0,
		Conflicts: conflicts,
		Summary:   validator.Summary(conflicts),
	})
}

// Analyze 统计课表的教师课时均衡度和班级时段覆盖率
func (h *ScheduleHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cal, err := calendar.Build(req.Input.WorkingDays)
	if err != nil {
		respondError(w, r, err)
		return
	}

	days := cal.DayLabels()
	respondJSON(w, http.StatusOK, AnalyzeResponse{
		Days:     days,
		Fairness: h.fairness.Analyze(req.Timetable, days),
		Coverage: h.coverage.Analyze(req.Timetable, cal),
	})
}

// Swap 评估同一班级两节课互换时段
func (h *ScheduleHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cal, err := calendar.Build(req.Input.WorkingDays)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.swaps.EvaluateSwap(req.Timetable, cal, &req.Input, req.SwapRequest))
}

// RecommendSwap 为一节课推荐可互换的时段
func (h *ScheduleHandler) RecommendSwap(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cal, err := calendar.Build(req.Input.WorkingDays)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, RecommendResponse{
		Source:          req.Source,
		Recommendations: h.recommender.RecommendSwapTargets(req.Timetable, cal, &req.Input, req.Source, req.Options),
	})
}

func (h *ScheduleHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	return nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回失败描述，状态码由错误码决定
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.GetHTTPStatus(err)
	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	logger.WithContext(r.Context()).WithLevel(level).Err(err).Int("status", status).Msg("请求失败")

	respondJSON(w, status, FailureResponse{
		Success: false,
		Failure: errors.ToFailure(err),
	})
}
