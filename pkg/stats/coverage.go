package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paiban/kebiao/pkg/model"
)

// CoverageMetrics 班级时段覆盖率指标
type CoverageMetrics struct {
	SlotsPerWeek    int               `json:"slots_per_week"`   // 每个班级一周的时段数
	OverallCoverage float64           `json:"overall_coverage"` // 全部班级上课时段占比 (%)
	Sections        []SectionCoverage `json:"sections"`

	// 按钟点统计同时在上课的班级数
	HourlyLoad map[int]int `json:"hourly_load"`

	// 一周里没有课的工作日
	EmptyDays []EmptyDay `json:"empty_days"`
}

// SectionCoverage 班级覆盖情况
type SectionCoverage struct {
	Year         string                 `json:"year"`
	Section      string                 `json:"section"`
	Lectures     int                    `json:"lectures"`
	LectureSlots int                    `json:"lecture_slots"`
	IdleSlots    int                    `json:"idle_slots"`
	CoverageRate float64                `json:"coverage_rate"`
	Daily        map[string]DayCoverage `json:"daily"`
}

// DayCoverage 某班级某天的覆盖情况
type DayCoverage struct {
	Day          string  `json:"day"`
	Slots        int     `json:"slots"`
	LectureSlots int     `json:"lecture_slots"`
	IdleSlots    int     `json:"idle_slots"`
	CoverageRate float64 `json:"coverage_rate"`
}

// EmptyDay 班级没有课的工作日
type EmptyDay struct {
	Year    string `json:"year"`
	Section string `json:"section"`
	Day     string `json:"day"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析课表对时段表的覆盖
func (c *CoverageAnalyzer) Analyze(tt model.Timetable, cal *model.Calendar) *CoverageMetrics {
	metrics := &CoverageMetrics{
		SlotsPerWeek: cal.Len(),
		Sections:     []SectionCoverage{},
		HourlyLoad:   make(map[int]int),
		EmptyDays:    []EmptyDay{},
	}

	daySlots := make(map[string]int, len(cal.Days))
	for _, d := range cal.Days {
		daySlots[d.Day] = d.Last - d.First + 1
	}

	totalLecture := 0
	for _, key := range tt.SectionKeys() {
		sc := SectionCoverage{
			Year:    key.Year,
			Section: key.Section,
			Daily:   make(map[string]DayCoverage, len(cal.Days)),
		}

		for _, d := range cal.Days {
			dc := DayCoverage{Day: d.Day, Slots: daySlots[d.Day]}
			for _, e := range tt[key.Year][key.Section][d.Day] {
				if e.Idle {
					dc.IdleSlots += e.Duration
					continue
				}
				sc.Lectures++
				dc.LectureSlots += e.Duration
				c.addHourlyLoad(metrics.HourlyLoad, cal, e)
			}
			dc.CoverageRate = percent(dc.LectureSlots, dc.Slots)
			if dc.LectureSlots == 0 {
				metrics.EmptyDays = append(metrics.EmptyDays, EmptyDay{Year: key.Year, Section: key.Section, Day: d.Day})
			}

			sc.LectureSlots += dc.LectureSlots
			sc.IdleSlots += dc.IdleSlots
			sc.Daily[d.Day] = dc
		}

		sc.CoverageRate = percent(sc.LectureSlots, cal.Len())
		totalLecture += sc.LectureSlots
		metrics.Sections = append(metrics.Sections, sc)
	}

	metrics.OverallCoverage = percent(totalLecture, cal.Len()*len(metrics.Sections))
	return metrics
}

// addHourlyLoad 按占用的每个时段的钟点计数
func (c *CoverageAnalyzer) addHourlyLoad(load map[int]int, cal *model.Calendar, e model.ScheduleEntry) {
	for t := e.SlotIndex; t < e.SlotIndex+e.Duration; t++ {
		if cal.Valid(t) {
			load[cal.Slot(t).Hour]++
		}
	}
}

// GenerateCoverageReport 生成覆盖率文本报告
func (c *CoverageAnalyzer) GenerateCoverageReport(metrics *CoverageMetrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== 课表覆盖率报告 ===\n")
	fmt.Fprintf(&b, "每班每周时段数: %d\n", metrics.SlotsPerWeek)
	fmt.Fprintf(&b, "整体上课占比: %.1f%%\n", metrics.OverallCoverage)

	for _, sc := range metrics.Sections {
		fmt.Fprintf(&b, "  %s/%s: %d 节课, %d 个上课时段, %d 个空闲时段 (%.1f%%)\n",
			sc.Year, sc.Section, sc.Lectures, sc.LectureSlots, sc.IdleSlots, sc.CoverageRate)
	}

	if len(metrics.HourlyLoad) > 0 {
		hours := make([]int, 0, len(metrics.HourlyLoad))
		for h := range metrics.HourlyLoad {
			hours = append(hours, h)
		}
		sort.Ints(hours)
		fmt.Fprintf(&b, "按钟点上课班次:\n")
		for _, h := range hours {
			fmt.Fprintf(&b, "  %s: %d\n", model.ClockTime(h), metrics.HourlyLoad[h])
		}
	}

	if len(metrics.EmptyDays) > 0 {
		fmt.Fprintf(&b, "无课的工作日: %d 个\n", len(metrics.EmptyDays))
	}

	return b.String()
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
