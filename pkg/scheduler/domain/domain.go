// Package domain 计算每个上课变量的合法开始时段
package domain

import (
	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// LegalStarts 返回给定课时长度与可用窗口下的全部合法开始时段（升序）
//
// 时段 s 合法当且仅当 s+d-1 有效、首尾属于同一天、且区间内每个时段的整点都在窗口内。
func LegalStarts(cal *model.Calendar, duration int, avail model.TeacherAvailability) []int {
	var starts []int
	for s := 0; s < cal.Len(); s++ {
		end := s + duration - 1
		if !cal.Valid(end) {
			break
		}
		if !cal.SameDay(s, end) {
			continue
		}
		ok := true
		for t := s; t <= end; t++ {
			if !avail.Contains(cal.Slot(t).Hour) {
				ok = false
				break
			}
		}
		if ok {
			starts = append(starts, s)
		}
	}
	return starts
}

type cacheKey struct {
	duration int
	avail    model.TeacherAvailability
}

// Compute 填充每个上课变量的定义域
//
// 任一非空闲变量的定义域为空时立即返回 INFEASIBLE_DOMAIN，不进入搜索。
func Compute(cal *model.Calendar, occs []model.Occurrence) error {
	cache := make(map[cacheKey][]int)
	for i := range occs {
		o := &occs[i]
		key := cacheKey{duration: o.Duration, avail: o.Availability}
		starts, ok := cache[key]
		if !ok {
			starts = LegalStarts(cal, o.Duration, o.Availability)
			cache[key] = starts
		}
		if len(starts) == 0 && !o.Idle {
			return apperrors.InfeasibleDomain(o.Subject, o.Year, o.Section)
		}
		o.Domain = append([]int(nil), starts...)
	}
	return nil
}
