package model

import "fmt"

// 默认值
const (
	DefaultSection = "A"
	IdleSubject    = "Free"
)

// TeacherAvailability 教师可用时间窗口 [StartHour, EndHour)
type TeacherAvailability struct {
	StartHour int `json:"start_hour" db:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int `json:"end_hour" db:"end_hour" validate:"gtfield=StartHour,lte=24"`
}

var (
	// DefaultAvailability 未登记教师的可用时间 09:00-17:00
	DefaultAvailability = TeacherAvailability{StartHour: 9, EndHour: 17}
	// OpenAvailability 空闲时段使用的全天窗口
	OpenAvailability = TeacherAvailability{StartHour: 0, EndHour: 24}
)

// Contains 检查某整点是否在窗口内
func (a TeacherAvailability) Contains(hour int) bool {
	return hour >= a.StartHour && hour < a.EndHour
}

// SectionKey 学生班级标识（年级+班级）
type SectionKey struct {
	Year    string `json:"year"`
	Section string `json:"section"`
}

// String 实现 fmt.Stringer
func (k SectionKey) String() string {
	return fmt.Sprintf("%s/%s", k.Year, k.Section)
}

// Less 按年级、班级排序
func (k SectionKey) Less(other SectionKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Section < other.Section
}

// SectionRef 班级及其固定教室
type SectionRef struct {
	Year     string `json:"year" db:"year" validate:"required"`
	Section  string `json:"section" db:"section" validate:"required"`
	Room     string `json:"room" db:"room"`
	Capacity int    `json:"capacity" db:"capacity" validate:"gte=0"`
}

// Key 班级标识
func (s SectionRef) Key() SectionKey {
	return SectionKey{Year: s.Year, Section: s.Section}
}

// CourseDemand 课程每周需求
type CourseDemand struct {
	Subject  string `json:"subject" db:"subject" validate:"required"`
	Year     string `json:"year" db:"year" validate:"required"`
	Section  string `json:"section" db:"section"`
	Teacher  string `json:"teacher" db:"teacher" validate:"required"`
	Lectures int    `json:"lectures" db:"lectures" validate:"gte=0"`
	Duration int    `json:"duration" db:"duration" validate:"gte=1"`
}

// Key 班级标识，未指定班级时归入默认班级
func (c CourseDemand) Key() SectionKey {
	section := c.Section
	if section == "" {
		section = DefaultSection
	}
	return SectionKey{Year: c.Year, Section: section}
}

// Slots 该课程每周占用的时段数
func (c CourseDemand) Slots() int {
	return c.Lectures * c.Duration
}

// Occurrence 一次具体的上课，是搜索的变量
type Occurrence struct {
	ID           int                 `json:"id"`
	Subject      string              `json:"subject"`
	Year         string              `json:"year"`
	Section      string              `json:"section"`
	Teacher      string              `json:"teacher,omitempty"`
	Duration     int                 `json:"duration"`
	Idle         bool                `json:"idle"`
	Availability TeacherAvailability `json:"availability"`
	Domain       []int               `json:"domain"` // 合法开始时段，升序
}

// Key 班级标识
func (o *Occurrence) Key() SectionKey {
	return SectionKey{Year: o.Year, Section: o.Section}
}

// Overlaps 检查两个半开区间 [s1, s1+d1) 与 [s2, s2+d2) 是否重叠
func Overlaps(s1, d1, s2, d2 int) bool {
	return !(s1+d1 <= s2 || s2+d2 <= s1)
}

// Assignment 完整解：下标为 Occurrence.ID，值为开始时段索引
type Assignment []int

// Clone 复制解
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}
