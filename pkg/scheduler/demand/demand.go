// Package demand 将课程需求展开为原子的上课变量
package demand

import (
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// Expansion 展开结果
type Expansion struct {
	Occurrences []model.Occurrence
	Sections    []model.SectionKey // 全部已知班级，按年级、班级排序
	Used        map[model.SectionKey]int
	Idle        int
}

// KnownSections 已登记班级与课程引用班级的并集
func KnownSections(in *model.Input) []model.SectionKey {
	keys := lo.Map(in.Sections, func(s model.SectionRef, _ int) model.SectionKey { return s.Key() })
	keys = append(keys, lo.Map(in.Courses, func(c model.CourseDemand, _ int) model.SectionKey { return c.Key() })...)
	keys = lo.Uniq(keys)
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Expand 每门课程展开 Lectures 个上课变量；允许空闲时段时为每个班级补足整周
func Expand(in *model.Input, totalSlots int) *Expansion {
	exp := &Expansion{
		Sections: KnownSections(in),
		Used:     make(map[model.SectionKey]int),
	}

	for _, c := range in.Courses {
		key := c.Key()
		exp.Used[key] += c.Slots()
		avail := in.Availability(c.Teacher)
		for k := 0; k < c.Lectures; k++ {
			exp.Occurrences = append(exp.Occurrences, model.Occurrence{
				ID:           len(exp.Occurrences),
				Subject:      c.Subject,
				Year:         key.Year,
				Section:      key.Section,
				Teacher:      c.Teacher,
				Duration:     c.Duration,
				Availability: avail,
			})
		}
	}

	if !in.AllowFreePeriods {
		return exp
	}

	for _, key := range exp.Sections {
		used := exp.Used[key]
		for k := used; k < totalSlots; k++ {
			exp.Occurrences = append(exp.Occurrences, model.Occurrence{
				ID:           len(exp.Occurrences),
				Subject:      model.IdleSubject,
				Year:         key.Year,
				Section:      key.Section,
				Duration:     1,
				Idle:         true,
				Availability: model.OpenAvailability,
			})
			exp.Idle++
		}
	}

	return exp
}
