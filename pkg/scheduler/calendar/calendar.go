// Package calendar 将工作日描述展开为全局编号的离散时段
package calendar

import (
	"fmt"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// LastHour 时段允许的最晚开始整点
const LastHour = 23

var dayAbbreviations = map[string]string{
	"Monday":    "M",
	"Tuesday":   "T",
	"Wednesday": "W",
	"Thursday":  "Th",
	"Friday":    "F",
	"Saturday":  "Sa",
	"Sunday":    "Su",
}

// Abbreviation 返回工作日缩写，未知名称取前两个字符
func Abbreviation(day string) string {
	if abbr, ok := dayAbbreviations[day]; ok {
		return abbr
	}
	r := []rune(day)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// Hours 计算某一天各时段的整点，跳过午休时刻
func Hours(day model.WorkingDay) []int {
	hours := make([]int, 0, day.TotalHours)
	hour := day.StartHour
	for j := 0; j < day.TotalHours; j++ {
		if hour == model.LunchHour {
			hour++
		}
		hours = append(hours, hour)
		hour++
	}
	return hours
}

// Build 按声明顺序构建整周时段表
func Build(days []model.WorkingDay) (*model.Calendar, error) {
	if len(days) == 0 {
		return nil, apperrors.ConfigError("未配置任何工作日")
	}

	cal := &model.Calendar{
		Days: make([]model.DaySpan, 0, len(days)),
	}
	seen := make(map[string]bool, len(days))

	for dayIdx, day := range days {
		if day.Day == "" {
			return nil, apperrors.ConfigError(fmt.Sprintf("第 %d 个工作日缺少名称", dayIdx+1))
		}
		if seen[day.Day] {
			return nil, apperrors.ConfigError(fmt.Sprintf("工作日 '%s' 重复", day.Day))
		}
		seen[day.Day] = true
		if day.TotalHours < 1 {
			return nil, apperrors.ConfigError(fmt.Sprintf("工作日 '%s' 的时段数必须为正", day.Day))
		}
		if day.StartHour < 0 || day.StartHour > LastHour {
			return nil, apperrors.ConfigError(fmt.Sprintf("工作日 '%s' 的开始时间 %d 越界", day.Day, day.StartHour))
		}

		hours := Hours(day)
		if last := hours[len(hours)-1]; last > LastHour {
			return nil, apperrors.ConfigError(
				fmt.Sprintf("工作日 '%s' 的最后一个时段 %s 超出当天", day.Day, model.ClockTime(last))).
				WithField("day", day.Day)
		}

		abbr := Abbreviation(day.Day)
		first := len(cal.Slots)
		for pos, hour := range hours {
			cal.Slots = append(cal.Slots, model.TimeSlot{
				Index:    len(cal.Slots),
				Day:      day.Day,
				DayIndex: dayIdx,
				Position: pos,
				Hour:     hour,
				Label:    fmt.Sprintf("%s%d", abbr, pos+1),
			})
		}
		cal.Days = append(cal.Days, model.DaySpan{
			Day:   day.Day,
			First: first,
			Last:  len(cal.Slots) - 1,
		})
	}

	return cal, nil
}
