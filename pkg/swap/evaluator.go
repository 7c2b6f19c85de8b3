// Package swap 提供调课功能：同一班级的两节课互换时段
package swap

import (
	"fmt"
	"sort"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/validator"
)

// SwapEvaluator 调课评估器
type SwapEvaluator struct {
	conflictDetector *validator.ConflictDetector
}

// NewSwapEvaluator 创建调课评估器
func NewSwapEvaluator(detector *validator.ConflictDetector) *SwapEvaluator {
	if detector == nil {
		detector = validator.NewConflictDetector(nil)
	}
	return &SwapEvaluator{conflictDetector: detector}
}

// SwapRequest 调课请求，按上课变量编号指定两节课
type SwapRequest struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// SwapEvaluation 调课评估结果
type SwapEvaluation struct {
	Feasible       bool                 `json:"feasible"`
	Score          float64              `json:"score"`  // 0-100
	Issues         []SwapIssue          `json:"issues"` // 问题列表
	Conflicts      []validator.Conflict `json:"conflicts,omitempty"`
	Impact         *SwapImpact          `json:"impact,omitempty"`
	Timetable      model.Timetable      `json:"timetable,omitempty"` // 互换后的课表
	Recommendation string               `json:"recommendation"`
}

// SwapIssue 调课问题
type SwapIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // error/warning/info
	Message  string `json:"message"`
}

// SwapImpact 调课影响
type SwapImpact struct {
	ConflictsBefore int                       `json:"conflicts_before"`
	ConflictsAfter  int                       `json:"conflicts_after"`
	Teachers        map[string]*TeacherImpact `json:"teachers"`
	CrossDay        bool                      `json:"cross_day"` // 两节课不在同一天
}

// TeacherImpact 教师受到的影响
type TeacherImpact struct {
	DaysBefore int `json:"days_before"` // 有课的天数
	DaysAfter  int `json:"days_after"`
}

// EvaluateSwap 评估两节课互换时段的可行性
func (e *SwapEvaluator) EvaluateSwap(
	tt model.Timetable,
	cal *model.Calendar,
	in *model.Input,
	request SwapRequest,
) *SwapEvaluation {
	result := &SwapEvaluation{
		Feasible: true,
		Score:    100,
		Issues:   make([]SwapIssue, 0),
	}

	days := cal.DayLabels()
	source, sourceOK := find(tt, days, request.Source)
	target, targetOK := find(tt, days, request.Target)

	// 1. 基础检查
	if !sourceOK || !targetOK || request.Source == request.Target {
		return reject(result, "invalid_request", "无效的调课请求")
	}
	if source.Year != target.Year || source.Section != target.Section {
		return reject(result, "section_mismatch", "只能在同一班级内调课")
	}
	if !cal.Valid(source.SlotIndex) || !cal.Valid(target.SlotIndex) {
		return reject(result, "invalid_slot", "课程的开始时段不在时段表内")
	}
	if source.SlotIndex == target.SlotIndex {
		return reject(result, "same_slot", "两节课的开始时段相同")
	}

	before := e.conflictDetector.DetectAll(tt, cal, in)
	swapped := Apply(tt, cal, source, target)
	after := e.conflictDetector.DetectAll(swapped, cal, in)

	// 2. 硬约束
	if len(after) > 0 {
		result.Feasible = false
		result.Conflicts = after
		for _, c := range after {
			result.Issues = append(result.Issues, SwapIssue{
				Type:     string(c.Type),
				Severity: c.Severity,
				Message:  c.Message,
			})
		}
	}

	// 3. 影响分析
	result.Impact = e.calculateImpact(tt, swapped, days, source, target)
	result.Impact.ConflictsBefore = len(before)
	result.Impact.ConflictsAfter = len(after)

	if result.Feasible {
		result.Timetable = swapped
		result.Score = e.score(result.Impact)
		if result.Impact.CrossDay {
			result.Issues = append(result.Issues, SwapIssue{
				Type:     "cross_day",
				Severity: "info",
				Message:  fmt.Sprintf("%s 从 %s 调到 %s", source.Subject, source.Day, target.Day),
			})
		}
	} else {
		result.Score = 0
	}

	result.Recommendation = e.generateRecommendation(result)
	return result
}

// CanSwap 快速检查是否可以调课
func (e *SwapEvaluator) CanSwap(tt model.Timetable, cal *model.Calendar, in *model.Input, request SwapRequest) (bool, string) {
	evaluation := e.EvaluateSwap(tt, cal, in, request)
	if !evaluation.Feasible && len(evaluation.Issues) > 0 {
		return false, evaluation.Issues[0].Message
	}
	return evaluation.Feasible, evaluation.Recommendation
}

// Apply 返回互换两节课开始时段后的课表副本，原课表不变
func Apply(tt model.Timetable, cal *model.Calendar, a, b model.ScheduleEntry) model.Timetable {
	out := make(model.Timetable, len(tt))
	for year, sections := range tt {
		out[year] = make(map[string]map[string]model.DaySchedule, len(sections))
		for section, byDay := range sections {
			out[year][section] = make(map[string]model.DaySchedule, len(byDay))
			for day := range byDay {
				out[year][section][day] = model.DaySchedule{}
			}
		}
	}

	// 只有互换的两节课换分组，其余课程留在原分组（包括时段表以外的日期）
	for year, sections := range tt {
		for section, byDay := range sections {
			for day, entries := range byDay {
				for _, e := range entries {
					switch e.OccurrenceID {
					case a.OccurrenceID:
						e = moveTo(e, cal, b.SlotIndex)
						out[year][section][e.Day] = append(out[year][section][e.Day], e)
						continue
					case b.OccurrenceID:
						e = moveTo(e, cal, a.SlotIndex)
						out[year][section][e.Day] = append(out[year][section][e.Day], e)
						continue
					}
					out[year][section][day] = append(out[year][section][day], e)
				}
			}
		}
	}

	for _, sections := range out {
		for _, byDay := range sections {
			for _, entries := range byDay {
				sort.SliceStable(entries, func(i, j int) bool {
					if entries[i].SlotIndex != entries[j].SlotIndex {
						return entries[i].SlotIndex < entries[j].SlotIndex
					}
					return entries[i].OccurrenceID < entries[j].OccurrenceID
				})
			}
		}
	}
	return out
}

// moveTo 把课程移到新的开始时段，重新计算日期和钟点
func moveTo(e model.ScheduleEntry, cal *model.Calendar, start int) model.ScheduleEntry {
	slot := cal.Slot(start)
	e.Day = slot.Day
	e.SlotIndex = slot.Index
	e.SlotLabel = slot.Label
	e.StartHour = slot.Hour
	e.EndHour = slot.Hour + e.Duration
	e.StartTime = model.ClockTime(e.StartHour)
	e.EndTime = model.ClockTime(e.EndHour)
	return e
}

// calculateImpact 统计相关教师有课天数的变化
func (e *SwapEvaluator) calculateImpact(before, after model.Timetable, days []string, a, b model.ScheduleEntry) *SwapImpact {
	impact := &SwapImpact{
		Teachers: make(map[string]*TeacherImpact),
		CrossDay: a.Day != b.Day,
	}

	for _, entry := range []model.ScheduleEntry{a, b} {
		if entry.Idle || entry.Teacher == "" {
			continue
		}
		impact.Teachers[entry.Teacher] = &TeacherImpact{
			DaysBefore: teachingDays(before, days, entry.Teacher),
			DaysAfter:  teachingDays(after, days, entry.Teacher),
		}
	}
	return impact
}

// score 跨天调课和增加教师到校天数会降低得分
func (e *SwapEvaluator) score(impact *SwapImpact) float64 {
	score := 100.0
	if impact.CrossDay {
		score -= 10
	}
	for _, t := range impact.Teachers {
		if t.DaysAfter > t.DaysBefore {
			score -= 15 * float64(t.DaysAfter-t.DaysBefore)
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// generateRecommendation 生成建议
func (e *SwapEvaluator) generateRecommendation(result *SwapEvaluation) string {
	if !result.Feasible {
		return "不建议调课：存在无法解决的冲突"
	}

	if result.Score >= 90 {
		return "强烈推荐：调课后课表仍然满足全部约束"
	} else if result.Score >= 70 {
		return "推荐：调课可行，但会增加教师到校天数或跨天"
	}
	return "可以调课，但影响较大，请确认"
}

func reject(result *SwapEvaluation, kind, message string) *SwapEvaluation {
	result.Feasible = false
	result.Score = 0
	result.Issues = append(result.Issues, SwapIssue{Type: kind, Severity: "error", Message: message})
	result.Recommendation = "不建议调课：" + message
	return result
}

func find(tt model.Timetable, days []string, occurrenceID int) (model.ScheduleEntry, bool) {
	for _, e := range tt.Entries(days) {
		if e.OccurrenceID == occurrenceID {
			return e, true
		}
	}
	return model.ScheduleEntry{}, false
}

func teachingDays(tt model.Timetable, days []string, teacher string) int {
	seen := make(map[string]bool)
	for _, e := range tt.Entries(days) {
		if !e.Idle && e.Teacher == teacher {
			seen[e.Day] = true
		}
	}
	return len(seen)
}
