package swap

import (
	"sort"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/validator"
)

// 调课方式
const (
	SwapTypeExchange = "exchange"  // 与另一节课互换
	SwapTypeMoveIdle = "move_idle" // 移到空闲时段
)

// Recommender 调课推荐器
type Recommender struct {
	evaluator *SwapEvaluator
}

// NewRecommender 创建调课推荐器
func NewRecommender(detector *validator.ConflictDetector) *Recommender {
	return &Recommender{
		evaluator: NewSwapEvaluator(detector),
	}
}

// Recommendation 调课推荐
type Recommendation struct {
	Target        model.ScheduleEntry `json:"target"`
	Score         float64             `json:"score"`
	Reason        string              `json:"reason"`
	SwapType      string              `json:"swap_type"`
	ImpactSummary string              `json:"impact_summary"`
	Rank          int                 `json:"rank"`
}

// RecommendOptions 推荐选项
type RecommendOptions struct {
	MaxRecommendations int     `json:"max_recommendations"` // 最大推荐数量
	SameDayOnly        bool    `json:"same_day_only"`       // 只在当天调课
	AllowIdle          bool    `json:"allow_idle"`          // 是否允许移到空闲时段
	MinScore           float64 `json:"min_score"`           // 最低得分
}

// DefaultRecommendOptions 返回默认选项
func DefaultRecommendOptions() *RecommendOptions {
	return &RecommendOptions{
		MaxRecommendations: 5,
		AllowIdle:          true,
		MinScore:           60,
	}
}

// RecommendSwapTargets 为一节课推荐可以互换时段的同班课程
func (r *Recommender) RecommendSwapTargets(
	tt model.Timetable,
	cal *model.Calendar,
	in *model.Input,
	source int,
	options *RecommendOptions,
) []Recommendation {
	if options == nil {
		options = DefaultRecommendOptions()
	}

	days := cal.DayLabels()
	sourceEntry, ok := find(tt, days, source)
	if !ok || !cal.Valid(sourceEntry.SlotIndex) {
		return []Recommendation{}
	}

	candidates := []Recommendation{}
	for _, day := range days {
		if options.SameDayOnly && day != sourceEntry.Day {
			continue
		}
		for _, target := range tt[sourceEntry.Year][sourceEntry.Section][day] {
			if target.OccurrenceID == source {
				continue
			}
			if target.Idle && !options.AllowIdle {
				continue
			}

			evaluation := r.evaluator.EvaluateSwap(tt, cal, in, SwapRequest{Source: source, Target: target.OccurrenceID})
			if !evaluation.Feasible || evaluation.Score < options.MinScore {
				continue
			}

			swapType := SwapTypeExchange
			if target.Idle {
				swapType = SwapTypeMoveIdle
			}
			candidates = append(candidates, Recommendation{
				Target:        target,
				Score:         evaluation.Score,
				SwapType:      swapType,
				Reason:        r.generateReason(target, evaluation),
				ImpactSummary: r.generateImpactSummary(evaluation),
			})
		}
	}

	// 得分相同时早的时段在前
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Target.SlotIndex < candidates[j].Target.SlotIndex
	})

	if options.MaxRecommendations > 0 && len(candidates) > options.MaxRecommendations {
		candidates = candidates[:options.MaxRecommendations]
	}

	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates
}

// FindBestSwapMatch 为一节课找到最佳调课目标
func (r *Recommender) FindBestSwapMatch(
	tt model.Timetable,
	cal *model.Calendar,
	in *model.Input,
	source int,
) *Recommendation {
	recommendations := r.RecommendSwapTargets(tt, cal, in, source, &RecommendOptions{
		MaxRecommendations: 1,
		AllowIdle:          true,
		MinScore:           50,
	})

	if len(recommendations) == 0 {
		return nil
	}

	return &recommendations[0]
}

// generateReason 生成推荐原因
func (r *Recommender) generateReason(target model.ScheduleEntry, evaluation *SwapEvaluation) string {
	if target.Idle {
		return "移到空闲时段 " + target.SlotLabel
	}
	if evaluation.Impact != nil && !evaluation.Impact.CrossDay {
		return "当天互换，不影响教师到校天数"
	}
	return "与 " + target.Subject + " 互换，无约束冲突"
}

// generateImpactSummary 生成影响摘要
func (r *Recommender) generateImpactSummary(evaluation *SwapEvaluation) string {
	if evaluation.Impact == nil {
		return "影响较小"
	}

	for _, t := range evaluation.Impact.Teachers {
		if t.DaysAfter > t.DaysBefore {
			return "教师到校天数增加"
		}
	}
	for _, t := range evaluation.Impact.Teachers {
		if t.DaysAfter < t.DaysBefore {
			return "教师到校天数减少"
		}
	}

	return "对教师到校天数无影响"
}
