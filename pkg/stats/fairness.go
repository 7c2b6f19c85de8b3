// Package stats 提供课表统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paiban/kebiao/pkg/model"
)

// 时段类别
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
)

// FairnessMetrics 教师课时公平性指标
type FairnessMetrics struct {
	// 课时公平性
	WorkloadGini       float64 `json:"workload_gini"` // 课时基尼系数 (0=完全均衡, 1=完全不均衡)
	WorkloadVariance   float64 `json:"workload_variance"`
	WorkloadStdDev     float64 `json:"workload_std_dev"`
	AvgHoursPerTeacher float64 `json:"avg_hours_per_teacher"`
	MaxHours           float64 `json:"max_hours"`
	MinHours           float64 `json:"min_hours"`
	HoursRange         float64 `json:"hours_range"`

	// 上午/下午课时占比（%）
	PeriodDistribution map[string]float64 `json:"period_distribution"`

	TeacherStats []TeacherStat `json:"teacher_stats"`

	// 综合评分 (0-100)
	OverallFairnessScore float64 `json:"overall_fairness_score"`
}

// TeacherStat 教师统计
type TeacherStat struct {
	Teacher        string  `json:"teacher"`
	Hours          int     `json:"hours"` // 占用的时段数
	Lectures       int     `json:"lectures"`
	Days           int     `json:"days"`     // 有课的天数
	Sections       int     `json:"sections"` // 任教的班级数
	MorningHours   int     `json:"morning_hours"`
	AfternoonHours int     `json:"afternoon_hours"`
	Deviation      float64 `json:"deviation"` // 与平均值的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	workloadWeight float64
	spreadWeight   float64
}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{
		workloadWeight: 0.7,
		spreadWeight:   0.3,
	}
}

// Analyze 分析课表中教师课时的公平性，空闲时段不计入
func (f *FairnessAnalyzer) Analyze(tt model.Timetable, days []string) *FairnessMetrics {
	teacherStats := f.calculateTeacherStats(tt.Entries(days))
	if len(teacherStats) == 0 {
		return &FairnessMetrics{
			PeriodDistribution:   make(map[string]float64),
			TeacherStats:         []TeacherStat{},
			OverallFairnessScore: 100,
		}
	}

	hours := make([]float64, len(teacherStats))
	morning, total := 0, 0
	for i, stat := range teacherStats {
		hours[i] = float64(stat.Hours)
		morning += stat.MorningHours
		total += stat.Hours
	}

	avgHours := mean(hours)
	hoursVariance := variance(hours, avgHours)
	stdDev := math.Sqrt(hoursVariance)
	maxHours, minHours := valueRange(hours)

	for i := range teacherStats {
		if avgHours > 0 {
			teacherStats[i].Deviation = (float64(teacherStats[i].Hours) - avgHours) / avgHours * 100
		}
	}

	distribution := map[string]float64{PeriodMorning: 0, PeriodAfternoon: 0}
	if total > 0 {
		distribution[PeriodMorning] = float64(morning) / float64(total) * 100
		distribution[PeriodAfternoon] = float64(total-morning) / float64(total) * 100
	}

	gini := Gini(hours)

	return &FairnessMetrics{
		WorkloadGini:         gini,
		WorkloadVariance:     hoursVariance,
		WorkloadStdDev:       stdDev,
		AvgHoursPerTeacher:   avgHours,
		MaxHours:             maxHours,
		MinHours:             minHours,
		HoursRange:           maxHours - minHours,
		PeriodDistribution:   distribution,
		TeacherStats:         teacherStats,
		OverallFairnessScore: f.calculateOverallScore(gini, stdDev, avgHours),
	}
}

// calculateTeacherStats 按教师汇总，课时多的在前
func (f *FairnessAnalyzer) calculateTeacherStats(entries []model.ScheduleEntry) []TeacherStat {
	statMap := make(map[string]*TeacherStat)
	days := make(map[string]map[string]bool)
	sections := make(map[string]map[model.SectionKey]bool)

	for _, e := range entries {
		if e.Idle || e.Teacher == "" {
			continue
		}
		stat, exists := statMap[e.Teacher]
		if !exists {
			stat = &TeacherStat{Teacher: e.Teacher}
			statMap[e.Teacher] = stat
			days[e.Teacher] = make(map[string]bool)
			sections[e.Teacher] = make(map[model.SectionKey]bool)
		}

		stat.Hours += e.Duration
		stat.Lectures++
		if e.StartHour < model.LunchHour {
			stat.MorningHours += e.Duration
		} else {
			stat.AfternoonHours += e.Duration
		}
		days[e.Teacher][e.Day] = true
		sections[e.Teacher][model.SectionKey{Year: e.Year, Section: e.Section}] = true
	}

	result := make([]TeacherStat, 0, len(statMap))
	for teacher, stat := range statMap {
		stat.Days = len(days[teacher])
		stat.Sections = len(sections[teacher])
		result = append(result, *stat)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Hours != result[j].Hours {
			return result[i].Hours > result[j].Hours
		}
		return result[i].Teacher < result[j].Teacher
	})

	return result
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(gini, stdDev, avgHours float64) float64 {
	workloadScore := (1 - gini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cvScore = math.Max(0, 100-stdDev/avgHours*200)
	}

	score := f.workloadWeight*workloadScore + f.spreadWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// Gini 计算基尼系数
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func valueRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}
