// Package constraints 约束目录：描述排课引擎支持的全部规则
package constraints

import (
	"strconv"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// Category 规则分类
const (
	CategoryExclusivity = "互斥"
	CategoryDomain      = "定义域"
	CategoryCalendar    = "时段表"
	CategoryPadding     = "排满"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, string, bool
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"` // 排课规则全部为硬约束
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Enabled     bool              `json:"enabled"`
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Library    []ConstraintDefinition `json:"library"`
	Registered int                    `json:"registered"` // 约束管理器中注册的互斥规则数
}

type exclusivityRule struct {
	typ         constraint.Type
	displayName string
	description string
}

var exclusivityRules = []exclusivityRule{
	{
		typ:         constraint.TypeTeacherExclusivity,
		displayName: "教师互斥",
		description: "同一教师的任意两节课时间区间不得重叠；空闲时段没有教师，不受此规则约束。",
	},
	{
		typ:         constraint.TypeSectionExclusivity,
		displayName: "班级互斥",
		description: "同一年级同一班级的任意两节课时间区间不得重叠，与任课教师无关。",
	},
}

// NewLibraryResponse 按约束管理器的当前注册情况生成约束库响应
func NewLibraryResponse(m *constraint.Manager) LibraryResponse {
	return LibraryResponse{
		Library:    GetLibrary(m),
		Registered: m.Count(),
	}
}

// GetLibrary 获取完整的约束库
//
// 互斥规则是否启用以约束管理器中注册的为准，其余规则由定义域和时段表固定实施。
func GetLibrary(m *constraint.Manager) []ConstraintDefinition {
	library := make([]ConstraintDefinition, 0, 6)

	for _, rule := range exclusivityRules {
		def := ConstraintDefinition{
			Name:        string(rule.typ),
			DisplayName: rule.displayName,
			Type:        "hard",
			Category:    CategoryExclusivity,
			Description: rule.description,
			Params:      []ConstraintParam{},
		}
		if c := m.GetConstraint(rule.typ); c != nil {
			def.DisplayName = c.Name()
			def.Enabled = true
		}
		library = append(library, def)
	}

	return append(library,
		ConstraintDefinition{
			Name:        "teacher_availability",
			DisplayName: "教师可用时间",
			Type:        "hard",
			Category:    CategoryDomain,
			Description: "课程占用的每个时段都必须落在任课教师的可用时间内；未登记的教师默认可用时间为 09:00-17:00。",
			Enabled:     true,
			Params: []ConstraintParam{
				{Name: "start_hour", Type: "int", Description: "最早开始钟点", Default: strconv.Itoa(model.DefaultAvailability.StartHour), Min: "0", Max: "23"},
				{Name: "end_hour", Type: "int", Description: "最晚结束钟点（不含）", Default: strconv.Itoa(model.DefaultAvailability.EndHour), Min: "1", Max: "24"},
			},
		},
		ConstraintDefinition{
			Name:        "day_containment",
			DisplayName: "不跨天",
			Type:        "hard",
			Category:    CategoryDomain,
			Description: "多课时的课程必须在同一天内连续排完。",
			Enabled:     true,
			Params:      []ConstraintParam{},
		},
		ConstraintDefinition{
			Name:        "lunch_hour",
			DisplayName: "午休保护",
			Type:        "hard",
			Category:    CategoryCalendar,
			Description: "时段表中不生成 12:00 开始的时段，当天后续时段顺延一小时。",
			Enabled:     true,
			Params: []ConstraintParam{
				{Name: "hour", Type: "int", Description: "午休钟点", Default: strconv.Itoa(model.LunchHour)},
			},
		},
		ConstraintDefinition{
			Name:        "free_period_padding",
			DisplayName: "空闲时段补齐",
			Type:        "hard",
			Category:    CategoryPadding,
			Description: "开启后每个班级的剩余时段用空闲时段补齐，一周的每个时段都恰好被占用一次。",
			Enabled:     false,
			Params: []ConstraintParam{
				{Name: "allow_free_periods", Type: "bool", Description: "按请求开启", Default: "false"},
			},
		},
	)
}
