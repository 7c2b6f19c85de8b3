// Package model 定义排课引擎的核心数据模型
package model

import "fmt"

// LunchHour 受保护的午休时刻，任何时段都不会以该时刻开始
const LunchHour = 12

// WorkingDay 工作日描述
type WorkingDay struct {
	Day        string `json:"day" db:"day" validate:"required"`
	StartHour  int    `json:"start_hour" db:"start_hour" validate:"gte=0,lte=23"`
	TotalHours int    `json:"total_hours" db:"total_hours" validate:"gte=1,lte=24"`
}

// TimeSlot 离散时段，Index 在整周内全局递增
type TimeSlot struct {
	Index    int    `json:"index"`
	Day      string `json:"day"`
	DayIndex int    `json:"day_index"`
	Position int    `json:"position"` // 当日第几个时段（从0开始）
	Hour     int    `json:"hour"`
	Label    string `json:"label"`
}

// DaySpan 某一天在全局时段序列中的区间 [First, Last]
type DaySpan struct {
	Day   string `json:"day"`
	First int    `json:"first"`
	Last  int    `json:"last"`
}

// Calendar 一次求解使用的整周时段表，构建后只读
type Calendar struct {
	Slots []TimeSlot `json:"slots"`
	Days  []DaySpan  `json:"days"`
}

// Len 时段总数
func (c *Calendar) Len() int {
	return len(c.Slots)
}

// Slot 按索引获取时段
func (c *Calendar) Slot(idx int) TimeSlot {
	return c.Slots[idx]
}

// Valid 检查索引是否有效
func (c *Calendar) Valid(idx int) bool {
	return idx >= 0 && idx < len(c.Slots)
}

// SameDay 检查两个时段是否属于同一天
func (c *Calendar) SameDay(a, b int) bool {
	return c.Slots[a].DayIndex == c.Slots[b].DayIndex
}

// DayLabels 按声明顺序返回工作日名称
func (c *Calendar) DayLabels() []string {
	labels := make([]string, len(c.Days))
	for i, d := range c.Days {
		labels[i] = d.Day
	}
	return labels
}

// ClockTime 将整点小时格式化为 HH:MM
func ClockTime(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
