// Package constraint 定义互斥约束规则和约束模型
package constraint

import (
	"github.com/paiban/kebiao/pkg/model"
)

// Type 约束类型标识
type Type string

const (
	TypeTeacherExclusivity Type = "teacher_exclusivity" // 同一教师不能同时上两节课
	TypeSectionExclusivity Type = "section_exclusivity" // 同一班级不能同时上两节课
)

// Constraint 互斥约束规则
//
// 规则把上课变量划分为互斥组：同组的任意两个变量占用的时间区间不得重叠。
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Key 返回变量所属的互斥组，ok 为 false 表示该变量不受此规则约束
	Key(o *model.Occurrence) (key string, ok bool)
}

// TeacherExclusivity 教师互斥
type TeacherExclusivity struct{}

// NewTeacherExclusivity 创建教师互斥约束
func NewTeacherExclusivity() *TeacherExclusivity {
	return &TeacherExclusivity{}
}

func (c *TeacherExclusivity) Name() string { return "教师互斥" }
func (c *TeacherExclusivity) Type() Type   { return TypeTeacherExclusivity }

// Key 空闲时段没有教师，不参与教师互斥
func (c *TeacherExclusivity) Key(o *model.Occurrence) (string, bool) {
	if o.Idle || o.Teacher == "" {
		return "", false
	}
	return o.Teacher, true
}

// SectionExclusivity 班级互斥
type SectionExclusivity struct{}

// NewSectionExclusivity 创建班级互斥约束
func NewSectionExclusivity() *SectionExclusivity {
	return &SectionExclusivity{}
}

func (c *SectionExclusivity) Name() string { return "班级互斥" }
func (c *SectionExclusivity) Type() Type   { return TypeSectionExclusivity }

// Key 按年级+班级分组
func (c *SectionExclusivity) Key(o *model.Occurrence) (string, bool) {
	return o.Year + "\x00" + o.Section, true
}

// Defaults 返回排课使用的全部约束
func Defaults() []Constraint {
	return []Constraint{
		NewTeacherExclusivity(),
		NewSectionExclusivity(),
	}
}
