package constraints

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

func TestGetLibrary(t *testing.T) {
	library := GetLibrary(constraint.NewDefaultManager())

	names := lo.Map(library, func(d ConstraintDefinition, _ int) string { return d.Name })
	assert.Equal(t, []string{
		"teacher_exclusivity",
		"section_exclusivity",
		"teacher_availability",
		"day_containment",
		"lunch_hour",
		"free_period_padding",
	}, names)

	for _, d := range library[:2] {
		assert.True(t, d.Enabled, d.Name)
	}
	for _, d := range library {
		assert.Equal(t, "hard", d.Type, d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
		assert.NotNil(t, d.Params, d.Name)
	}
}

func TestGetLibrary_FollowsManager(t *testing.T) {
	m := constraint.NewManager()
	m.Register(constraint.NewSectionExclusivity())

	resp := NewLibraryResponse(m)
	assert.Equal(t, 1, resp.Registered)
	require.Len(t, resp.Library, 6)

	teacher, found := lo.Find(resp.Library, func(d ConstraintDefinition) bool {
		return d.Name == string(constraint.TypeTeacherExclusivity)
	})
	require.True(t, found)
	assert.False(t, teacher.Enabled)
	assert.Equal(t, "教师互斥", teacher.DisplayName)

	section, found := lo.Find(resp.Library, func(d ConstraintDefinition) bool {
		return d.Name == string(constraint.TypeSectionExclusivity)
	})
	require.True(t, found)
	assert.True(t, section.Enabled)
}
