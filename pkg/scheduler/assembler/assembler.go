// Package assembler 将可行解还原为按年级/班级/工作日组织的课表
package assembler

import (
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// Assemble 把每个变量的开始时段解析为具体的日期和时刻
//
// 每个已知班级在每个工作日都有一个（可能为空的）列表，列表按开始时间升序。
func Assemble(
	cal *model.Calendar,
	sections []model.SectionKey,
	rooms map[model.SectionKey]model.SectionRef,
	occs []model.Occurrence,
	assignment model.Assignment,
) model.Timetable {
	days := cal.DayLabels()
	tt := make(model.Timetable)

	bucket := func(key model.SectionKey) map[string]model.DaySchedule {
		if tt[key.Year] == nil {
			tt[key.Year] = make(map[string]map[string]model.DaySchedule)
		}
		if tt[key.Year][key.Section] == nil {
			tt[key.Year][key.Section] = lo.SliceToMap(days, func(day string) (string, model.DaySchedule) {
				return day, model.DaySchedule{}
			})
		}
		return tt[key.Year][key.Section]
	}

	for _, key := range sections {
		bucket(key)
	}

	for i := range occs {
		o := &occs[i]
		start := assignment[o.ID]
		slot := cal.Slot(start)
		endHour := slot.Hour + o.Duration

		b := bucket(o.Key())
		b[slot.Day] = append(b[slot.Day], model.ScheduleEntry{
			OccurrenceID: o.ID,
			Year:         o.Year,
			Section:      o.Section,
			Day:          slot.Day,
			SlotLabel:    slot.Label,
			SlotIndex:    slot.Index,
			Subject:      o.Subject,
			Teacher:      o.Teacher,
			Room:         rooms[o.Key()].Room,
			StartTime:    model.ClockTime(slot.Hour),
			EndTime:      model.ClockTime(endHour),
			StartHour:    slot.Hour,
			EndHour:      endHour,
			Duration:     o.Duration,
			Idle:         o.Idle,
		})
	}

	for _, sections := range tt {
		for _, byDay := range sections {
			for _, entries := range byDay {
				sort.SliceStable(entries, func(a, b int) bool {
					if entries[a].StartHour != entries[b].StartHour {
						return entries[a].StartHour < entries[b].StartHour
					}
					return entries[a].OccurrenceID < entries[b].OccurrenceID
				})
			}
		}
	}

	return tt
}
