package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

func TestBuild(t *testing.T) {
	cal, err := Build([]model.WorkingDay{
		{Day: "Monday", StartHour: 9, TotalHours: 3},
		{Day: "Tuesday", StartHour: 10, TotalHours: 2},
	})
	require.NoError(t, err)

	require.Equal(t, 5, cal.Len())
	for i, s := range cal.Slots {
		assert.Equal(t, i, s.Index)
	}
	assert.Equal(t, []string{"M1", "M2", "M3", "T1", "T2"}, labels(cal))
	assert.Equal(t, []int{9, 10, 11, 10, 11}, hours(cal))
	assert.Equal(t, []model.DaySpan{
		{Day: "Monday", First: 0, Last: 2},
		{Day: "Tuesday", First: 3, Last: 4},
	}, cal.Days)
	assert.True(t, cal.SameDay(0, 2))
	assert.False(t, cal.SameDay(2, 3))
	assert.Equal(t, []string{"Monday", "Tuesday"}, cal.DayLabels())
}

func TestBuild_LunchHour(t *testing.T) {
	tests := []struct {
		name     string
		day      model.WorkingDay
		expected []int
	}{
		{
			name:     "跨越午休",
			day:      model.WorkingDay{Day: "Monday", StartHour: 9, TotalHours: 8},
			expected: []int{9, 10, 11, 13, 14, 15, 16, 17},
		},
		{
			name:     "从午休开始",
			day:      model.WorkingDay{Day: "Monday", StartHour: 12, TotalHours: 2},
			expected: []int{13, 14},
		},
		{
			name:     "午休之前结束",
			day:      model.WorkingDay{Day: "Monday", StartHour: 8, TotalHours: 4},
			expected: []int{8, 9, 10, 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := Build([]model.WorkingDay{tt.day})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hours(cal))
			assert.Len(t, cal.Slots, tt.day.TotalHours)
			for _, s := range cal.Slots {
				assert.NotEqual(t, model.LunchHour, s.Hour)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		days []model.WorkingDay
	}{
		{name: "空列表", days: nil},
		{name: "重复工作日", days: []model.WorkingDay{
			{Day: "Monday", StartHour: 9, TotalHours: 2},
			{Day: "Monday", StartHour: 9, TotalHours: 2},
		}},
		{name: "时段数为零", days: []model.WorkingDay{{Day: "Monday", StartHour: 9, TotalHours: 0}}},
		{name: "超出当天", days: []model.WorkingDay{{Day: "Monday", StartHour: 20, TotalHours: 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.days)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeConfig))
		})
	}
}

func TestAbbreviation(t *testing.T) {
	assert.Equal(t, "Th", Abbreviation("Thursday"))
	assert.Equal(t, "Su", Abbreviation("Sunday"))
	assert.Equal(t, "Mo", Abbreviation("Montag"))
	assert.Equal(t, "周一", Abbreviation("周一"))
	assert.Equal(t, "X", Abbreviation("X"))
}

func labels(cal *model.Calendar) []string {
	out := make([]string, 0, cal.Len())
	for _, s := range cal.Slots {
		out = append(out, s.Label)
	}
	return out
}

func hours(cal *model.Calendar) []int {
	out := make([]int, 0, cal.Len())
	for _, s := range cal.Slots {
		out = append(out, s.Hour)
	}
	return out
}
