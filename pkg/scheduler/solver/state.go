package solver

import (
	"sort"

	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

type removal struct {
	occ int32
	pos int32
}

// state 一个 worker 独占的部分赋值状态
//
// 定义域保存为原始升序取值加删除标记，回溯时按 trail 恢复。
type state struct {
	m        *constraint.Model
	values   [][]int
	removed  [][]bool
	size     []int
	assigned []int // -1 表示未赋值
	trail    []removal
	free     int

	nodes      int64
	backtracks int64
}

func newState(m *constraint.Model) *state {
	n := m.Size()
	s := &state{
		m:        m,
		values:   make([][]int, n),
		removed:  make([][]bool, n),
		size:     make([]int, n),
		assigned: make([]int, n),
		free:     n,
	}
	for i := range m.Occurrences {
		s.values[i] = m.Occurrences[i].Domain
		s.removed[i] = make([]bool, len(s.values[i]))
		s.size[i] = len(s.values[i])
		s.assigned[i] = -1
	}
	return s
}

// selectVar 选择剩余定义域最小的未赋值变量，相同时取编号最小者
func (s *state) selectVar() int {
	if s.free == 0 {
		return -1
	}
	best, bestSize := -1, 0
	for i, v := range s.assigned {
		if v >= 0 {
			continue
		}
		if best < 0 || s.size[i] < bestSize {
			best, bestSize = i, s.size[i]
		}
	}
	return best
}

// candidates 当前定义域中仍然有效的取值（升序）
func (s *state) candidates(i int) []int {
	out := make([]int, 0, s.size[i])
	for k, v := range s.values[i] {
		if !s.removed[i][k] {
			out = append(out, v)
		}
	}
	return out
}

func (s *state) present(i, v int) bool {
	k := sort.SearchInts(s.values[i], v)
	return k < len(s.values[i]) && s.values[i][k] == v && !s.removed[i][k]
}

// removeRange 删除 j 的定义域中位于 [from, to) 的取值，返回删除后定义域是否非空
func (s *state) removeRange(j, from, to int) bool {
	vals := s.values[j]
	for k := sort.SearchInts(vals, from); k < len(vals) && vals[k] < to; k++ {
		if s.removed[j][k] {
			continue
		}
		s.removed[j][k] = true
		s.size[j]--
		s.trail = append(s.trail, removal{occ: int32(j), pos: int32(k)})
	}
	return s.size[j] > 0
}

// assign 绑定 i=v 并做前向检查；任一邻居定义域被清空时返回 false
func (s *state) assign(i, v int) bool {
	s.assigned[i] = v
	s.free--

	di := s.m.Occurrences[i].Duration
	for _, j := range s.m.Neighbors[i] {
		if s.assigned[j] >= 0 {
			continue
		}
		// 与 [v, v+di) 重叠的开始时段 w 满足 v-dj < w < v+di
		dj := s.m.Occurrences[j].Duration
		if !s.removeRange(j, v-dj+1, v+di) {
			return false
		}
	}

	// 对称链：前驱必须更早开始，后继必须更晚开始
	if p := s.m.Prev[i]; p >= 0 && s.assigned[p] < 0 {
		if !s.removeRange(p, v, maxSlot) {
			return false
		}
	}
	if n := s.m.Next[i]; n >= 0 && s.assigned[n] < 0 {
		if !s.removeRange(n, minSlot, v+1) {
			return false
		}
	}
	return true
}

// undo 撤销 i 的绑定，并恢复 mark 之后的全部删除
func (s *state) undo(i, mark int) {
	for t := len(s.trail) - 1; t >= mark; t-- {
		r := s.trail[t]
		s.removed[r.occ][r.pos] = false
		s.size[r.occ]++
	}
	s.trail = s.trail[:mark]
	s.assigned[i] = -1
	s.free++
}

// search 深度优先回溯；stop 在每个节点检查，返回 true 时放弃搜索
func (s *state) search(stop func() bool) (bool, error) {
	if stop() {
		return false, errAborted
	}
	s.nodes++

	i := s.selectVar()
	if i < 0 {
		return true, nil
	}

	for _, v := range s.candidates(i) {
		mark := len(s.trail)
		if s.assign(i, v) {
			found, err := s.search(stop)
			if err != nil || found {
				return found, err
			}
		}
		s.undo(i, mark)
		s.backtracks++
	}
	return false, nil
}

func (s *state) assignment() model.Assignment {
	return model.Assignment(s.assigned).Clone()
}

const (
	minSlot = -1 << 31
	maxSlot = 1<<31 - 1
)
