package constraint

import (
	"sync"

	"github.com/paiban/kebiao/pkg/model"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
	}
}

// NewDefaultManager 创建注册了全部默认约束的管理器
func NewDefaultManager() *Manager {
	m := NewManager()
	for _, c := range Defaults() {
		m.Register(c)
	}
	return m
}

// Register 注册约束，同类型约束会被替换
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// Build 使用已注册的约束编译约束模型
func (m *Manager) Build(occs []model.Occurrence, opts BuildOptions) *Model {
	return Build(occs, m.GetAll(), opts)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary 返回约束摘要
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.constraints))
	for _, c := range m.constraints {
		names = append(names, c.Name())
	}

	return map[string]interface{}{
		"total": len(m.constraints),
		"names": names,
	}
}
