package constraint

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/paiban/kebiao/pkg/model"
)

// Pair 一对互斥的上课变量，A < B
type Pair struct {
	A     int    `json:"a"`
	B     int    `json:"b"`
	Types []Type `json:"types"`
}

// Stats 约束模型统计
type Stats struct {
	Pairs          int          `json:"pairs"`
	ForbiddenPairs int64        `json:"forbidden_pairs"` // 两个定义域之间会导致重叠的取值组合数
	Groups         map[Type]int `json:"groups"`          // 每类规则下成员数 >= 2 的互斥组数
	TwinChains     int          `json:"twin_chains"`
}

// Model 编译后的约束模型，求解期间只读，可被多个 worker 共享
type Model struct {
	Occurrences []model.Occurrence
	Pairs       []Pair
	Neighbors   [][]int // 每个变量的互斥邻居，升序
	Next        []int   // 对称链中的后继变量，-1 表示无
	Prev        []int   // 对称链中的前驱变量，-1 表示无
	Stats       Stats
}

// BuildOptions 建模选项
type BuildOptions struct {
	// SymmetryBreaking 完全相同的变量按编号强制开始时段递增
	SymmetryBreaking bool
}

// Build 根据规则生成两两互斥约束
func Build(occs []model.Occurrence, rules []Constraint, opts BuildOptions) *Model {
	n := len(occs)
	m := &Model{
		Occurrences: occs,
		Neighbors:   make([][]int, n),
		Next:        make([]int, n),
		Prev:        make([]int, n),
		Stats:       Stats{Groups: make(map[Type]int)},
	}
	for i := range m.Next {
		m.Next[i] = -1
		m.Prev[i] = -1
	}

	pairIdx := make(map[[2]int]int)
	for _, rule := range rules {
		groups := make(map[string][]int)
		var order []string
		for i := range occs {
			key, ok := rule.Key(&occs[i])
			if !ok {
				continue
			}
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], occs[i].ID)
		}

		for _, key := range order {
			members := groups[key]
			// 单成员组不产生约束
			if len(members) < 2 {
				continue
			}
			m.Stats.Groups[rule.Type()]++
			for x := 0; x < len(members); x++ {
				for y := x + 1; y < len(members); y++ {
					k := [2]int{members[x], members[y]}
					if idx, ok := pairIdx[k]; ok {
						m.Pairs[idx].Types = append(m.Pairs[idx].Types, rule.Type())
						continue
					}
					pairIdx[k] = len(m.Pairs)
					m.Pairs = append(m.Pairs, Pair{A: k[0], B: k[1], Types: []Type{rule.Type()}})
				}
			}
		}
	}

	sort.Slice(m.Pairs, func(i, j int) bool {
		if m.Pairs[i].A != m.Pairs[j].A {
			return m.Pairs[i].A < m.Pairs[j].A
		}
		return m.Pairs[i].B < m.Pairs[j].B
	})
	for _, p := range m.Pairs {
		m.Neighbors[p.A] = append(m.Neighbors[p.A], p.B)
		m.Neighbors[p.B] = append(m.Neighbors[p.B], p.A)
		m.Stats.ForbiddenPairs += forbiddenPairs(&occs[p.A], &occs[p.B])
	}
	for i := range m.Neighbors {
		sort.Ints(m.Neighbors[i])
	}
	m.Stats.Pairs = len(m.Pairs)

	if opts.SymmetryBreaking {
		m.linkTwins()
	}
	return m
}

// linkTwins 把可互换的变量串成链，链内开始时段必须严格递增
//
// 只链接互为邻居的变量：它们在任何解中都不会取相同的开始时段。
func (m *Model) linkTwins() {
	twins := lo.GroupBy(m.Occurrences, func(o model.Occurrence) string {
		return fmt.Sprintf("%s|%s|%s|%s|%d|%t|%v", o.Subject, o.Year, o.Section, o.Teacher, o.Duration, o.Idle, o.Domain)
	})
	for _, group := range twins {
		if len(group) < 2 {
			continue
		}
		ids := lo.Map(group, func(o model.Occurrence, _ int) int { return o.ID })
		sort.Ints(ids)
		linked := false
		for k := 1; k < len(ids); k++ {
			a, b := ids[k-1], ids[k]
			if !m.IsNeighbor(a, b) {
				continue
			}
			m.Next[a] = b
			m.Prev[b] = a
			linked = true
		}
		if linked {
			m.Stats.TwinChains++
		}
	}
}

// IsNeighbor 检查两个变量之间是否存在互斥约束
func (m *Model) IsNeighbor(a, b int) bool {
	nb := m.Neighbors[a]
	i := sort.SearchInts(nb, b)
	return i < len(nb) && nb[i] == b
}

// Conflicts 检查 a 从 va 开始与 b 从 vb 开始是否违反互斥约束
func (m *Model) Conflicts(a, va, b, vb int) bool {
	if !m.IsNeighbor(a, b) {
		return false
	}
	return model.Overlaps(va, m.Occurrences[a].Duration, vb, m.Occurrences[b].Duration)
}

// Size 变量数
func (m *Model) Size() int {
	return len(m.Occurrences)
}

// forbiddenPairs 统计 a、b 定义域中会重叠的取值组合数
func forbiddenPairs(a, b *model.Occurrence) int64 {
	var count int64
	for _, s1 := range a.Domain {
		// s2 ∈ (s1-db, s1+da)
		from := sort.SearchInts(b.Domain, s1-b.Duration+1)
		to := sort.SearchInts(b.Domain, s1+a.Duration)
		count += int64(to - from)
	}
	return count
}
