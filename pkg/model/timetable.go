package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ScheduleEntry 课表中的一节课
type ScheduleEntry struct {
	OccurrenceID int    `json:"occurrence_id"`
	Year         string `json:"year"`
	Section      string `json:"section"`
	Day          string `json:"day"`
	SlotLabel    string `json:"slot_label"`
	SlotIndex    int    `json:"slot_index"`
	Subject      string `json:"subject"`
	Teacher      string `json:"teacher"`
	Room         string `json:"room"`
	StartTime    string `json:"start_time"` // HH:MM
	EndTime      string `json:"end_time"`   // HH:MM
	StartHour    int    `json:"start_hour"`
	EndHour      int    `json:"end_hour"`
	Duration     int    `json:"duration"`
	Idle         bool   `json:"idle,omitempty"`
}

// DaySchedule 某班级某一天的课程，按开始时间升序
type DaySchedule []ScheduleEntry

// Timetable 年级 -> 班级 -> 工作日 -> 课程列表
type Timetable map[string]map[string]map[string]DaySchedule

// Entries 按年级、班级、工作日顺序展开全部课程
func (t Timetable) Entries(days []string) []ScheduleEntry {
	var out []ScheduleEntry
	for _, key := range t.SectionKeys() {
		for _, day := range days {
			out = append(out, t[key.Year][key.Section][day]...)
		}
	}
	return out
}

// DayKeys 返回课表中出现的全部工作日：先按 days 的顺序，再按名称排列 days 以外的日期
func (t Timetable) DayKeys(days []string) []string {
	known := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		known[day] = true
		out = append(out, day)
	}

	var extra []string
	for _, sections := range t {
		for _, byDay := range sections {
			for day := range byDay {
				if !known[day] {
					known[day] = true
					extra = append(extra, day)
				}
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// SectionKeys 按年级、班级排序返回所有班级
func (t Timetable) SectionKeys() []SectionKey {
	var keys []SectionKey
	for year, sections := range t {
		for section := range sections {
			keys = append(keys, SectionKey{Year: year, Section: section})
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Statistics 求解统计
type Statistics struct {
	Occurrences     int   `json:"occurrences"`
	IdleOccurrences int   `json:"idle_occurrences"`
	Slots           int   `json:"slots"`
	ConstraintPairs int   `json:"constraint_pairs"`
	ForbiddenPairs  int64 `json:"forbidden_pairs"`
	Nodes           int64 `json:"nodes"`
	Backtracks      int64 `json:"backtracks"`
	RootBranches    int   `json:"root_branches"`
	Workers         int   `json:"workers"`
}

// Result 一次成功求解的结果
type Result struct {
	SolveID    uuid.UUID     `json:"solve_id"`
	Days       []string      `json:"days"`
	Timetable  Timetable     `json:"timetable"`
	Assignment Assignment    `json:"assignment"`
	Statistics Statistics    `json:"statistics"`
	Duration   time.Duration `json:"duration"`
}
