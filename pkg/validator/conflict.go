// Package validator 提供课表验证功能
package validator

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictTeacherOverlap ConflictType = "teacher_overlap" // 教师时间重叠
	ConflictSectionOverlap ConflictType = "section_overlap" // 班级时间重叠
	ConflictAvailability   ConflictType = "availability"    // 超出教师可用时间
	ConflictDaySpan        ConflictType = "day_span"        // 跨越两天
	ConflictCompleteness   ConflictType = "completeness"    // 班级一周未排满
)

// Conflict 冲突信息
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    string       `json:"severity"` // error/warning
	Teacher     string       `json:"teacher,omitempty"`
	Year        string       `json:"year,omitempty"`
	Section     string       `json:"section,omitempty"`
	Day         string       `json:"day,omitempty"`
	Message     string       `json:"message"`
	Occurrences []int        `json:"occurrences,omitempty"` // 相关的上课变量
}

// ConflictDetector 冲突检测器
type ConflictDetector struct {
	config *DetectorConfig
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	CheckAvailability bool // 是否检查教师可用时间
	CheckCompleteness bool // 允许空闲时段时是否检查每班排满
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		CheckAvailability: true,
		CheckCompleteness: true,
	}
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

// DetectAll 检测课表中的所有冲突
func (d *ConflictDetector) DetectAll(tt model.Timetable, cal *model.Calendar, in *model.Input) []Conflict {
	// 包括时段表以外的日期，避免其中的课程被漏检
	entries, buckets := collect(tt, cal)
	var conflicts []Conflict

	for i := range entries {
		conflicts = append(conflicts, d.detectDaySpan(&entries[i], buckets[i], cal)...)
		if d.config.CheckAvailability && !entries[i].Idle {
			conflicts = append(conflicts, d.detectAvailability(&entries[i], cal, in.Availability(entries[i].Teacher))...)
		}
	}

	byTeacher := make(map[string][]*model.ScheduleEntry)
	bySection := make(map[model.SectionKey][]*model.ScheduleEntry)
	for i := range entries {
		e := &entries[i]
		if !e.Idle && e.Teacher != "" {
			byTeacher[e.Teacher] = append(byTeacher[e.Teacher], e)
		}
		key := model.SectionKey{Year: e.Year, Section: e.Section}
		bySection[key] = append(bySection[key], e)
	}

	for _, teacher := range sortedKeys(byTeacher) {
		for _, pair := range overlapping(byTeacher[teacher]) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictTeacherOverlap,
				Severity:    "error",
				Teacher:     teacher,
				Day:         pair[0].Day,
				Message:     fmt.Sprintf("教师 %s 的 %s 与 %s 时间重叠", teacher, pair[0].SlotLabel, pair[1].SlotLabel),
				Occurrences: []int{pair[0].OccurrenceID, pair[1].OccurrenceID},
			})
		}
	}

	for _, key := range tt.SectionKeys() {
		for _, pair := range overlapping(bySection[key]) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictSectionOverlap,
				Severity:    "error",
				Year:        key.Year,
				Section:     key.Section,
				Day:         pair[0].Day,
				Message:     fmt.Sprintf("班级 %s 的 %s 与 %s 时间重叠", key, pair[0].SlotLabel, pair[1].SlotLabel),
				Occurrences: []int{pair[0].OccurrenceID, pair[1].OccurrenceID},
			})
		}

		if d.config.CheckCompleteness && in.AllowFreePeriods {
			occupied := 0
			for _, e := range bySection[key] {
				occupied += e.Duration
			}
			if occupied != cal.Len() {
				conflicts = append(conflicts, Conflict{
					Type:     ConflictCompleteness,
					Severity: "error",
					Year:     key.Year,
					Section:  key.Section,
					Message:  fmt.Sprintf("班级 %s 占用 %d 个时段，一周共 %d 个时段", key, occupied, cal.Len()),
				})
			}
		}
	}

	return conflicts
}

// collect 展开全部课程，同时返回每节课所在的工作日分组
func collect(tt model.Timetable, cal *model.Calendar) ([]model.ScheduleEntry, []string) {
	days := tt.DayKeys(cal.DayLabels())
	var entries []model.ScheduleEntry
	var buckets []string
	for _, key := range tt.SectionKeys() {
		for _, day := range days {
			for _, e := range tt[key.Year][key.Section][day] {
				entries = append(entries, e)
				buckets = append(buckets, day)
			}
		}
	}
	return entries, buckets
}

// detectDaySpan 检测跨天、越界或日期与时段不符的课程
func (d *ConflictDetector) detectDaySpan(e *model.ScheduleEntry, bucket string, cal *model.Calendar) []Conflict {
	last := e.SlotIndex + e.Duration - 1
	if cal.Valid(e.SlotIndex) && cal.Valid(last) && cal.SameDay(e.SlotIndex, last) {
		day := cal.Slot(e.SlotIndex).Day
		if e.Day == day && bucket == day {
			return nil
		}
		return []Conflict{{
			Type:        ConflictDaySpan,
			Severity:    "error",
			Year:        e.Year,
			Section:     e.Section,
			Day:         bucket,
			Message:     fmt.Sprintf("%s 的时段 %s 属于 %s，但被排在 %s", e.Subject, cal.Slot(e.SlotIndex).Label, day, bucket),
			Occurrences: []int{e.OccurrenceID},
		}}
	}
	return []Conflict{{
		Type:        ConflictDaySpan,
		Severity:    "error",
		Year:        e.Year,
		Section:     e.Section,
		Day:         bucket,
		Message:     fmt.Sprintf("%s 从 %s 开始的 %d 课时超出当天", e.Subject, e.SlotLabel, e.Duration),
		Occurrences: []int{e.OccurrenceID},
	}}
}

// detectAvailability 检测课程占用的每个时段是否都在教师可用时间内
func (d *ConflictDetector) detectAvailability(e *model.ScheduleEntry, cal *model.Calendar, avail model.TeacherAvailability) []Conflict {
	for t := e.SlotIndex; t < e.SlotIndex+e.Duration; t++ {
		if !cal.Valid(t) || avail.Contains(cal.Slot(t).Hour) {
			continue
		}
		return []Conflict{{
			Type:     ConflictAvailability,
			Severity: "error",
			Teacher:  e.Teacher,
			Day:      e.Day,
			Message: fmt.Sprintf("教师 %s 的 %s 超出可用时间 %s-%s", e.Teacher, e.SlotLabel,
				model.ClockTime(avail.StartHour), model.ClockTime(avail.EndHour)),
			Occurrences: []int{e.OccurrenceID},
		}}
	}
	return nil
}

// overlapping 返回时段区间重叠的全部课程对
//
// 按时段索引比较而不是按钟点比较：跨越午休的连堂课钟点上不连续。
func overlapping(entries []*model.ScheduleEntry) [][2]*model.ScheduleEntry {
	sorted := make([]*model.ScheduleEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SlotIndex != sorted[j].SlotIndex {
			return sorted[i].SlotIndex < sorted[j].SlotIndex
		}
		return sorted[i].OccurrenceID < sorted[j].OccurrenceID
	})

	var pairs [][2]*model.ScheduleEntry
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if b.SlotIndex >= a.SlotIndex+a.Duration {
				break
			}
			pairs = append(pairs, [2]*model.ScheduleEntry{a, b})
		}
	}
	return pairs
}

func sortedKeys(m map[string][]*model.ScheduleEntry) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// Summary 按冲突类型计数
func Summary(conflicts []Conflict) map[ConflictType]int {
	out := make(map[ConflictType]int)
	for _, c := range conflicts {
		out[c.Type]++
	}
	return out
}
