package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/kebiao/pkg/errors"
)

func validInput() *Input {
	return &Input{
		WorkingDays: []WorkingDay{{Day: "Monday", StartHour: 9, TotalHours: 3}},
		Teachers:    map[string]TeacherAvailability{"Smith": {StartHour: 9, EndHour: 12}},
		Sections:    []SectionRef{{Year: "Year1", Section: "A", Room: "R101", Capacity: 40}},
		Courses: []CourseDemand{
			{Subject: "Math", Year: "Year1", Section: "A", Teacher: "Smith", Lectures: 1, Duration: 1},
		},
	}
}

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Input)
		field  string
	}{
		{name: "合法输入", mutate: func(in *Input) {}},
		{name: "没有工作日", mutate: func(in *Input) { in.WorkingDays = nil }},
		{name: "没有课程", mutate: func(in *Input) { in.Courses = nil }},
		{
			name: "工作日重复",
			mutate: func(in *Input) {
				in.WorkingDays = append(in.WorkingDays, WorkingDay{Day: "Monday", StartHour: 9, TotalHours: 2})
			},
			field: "working_days",
		},
		{
			name:   "开始时间越界",
			mutate: func(in *Input) { in.WorkingDays[0].StartHour = 24 },
			field:  "working_days[0].start_hour",
		},
		{
			name:   "时段数为零",
			mutate: func(in *Input) { in.WorkingDays[0].TotalHours = 0 },
			field:  "working_days[0].total_hours",
		},
		{
			name:   "课时长度为零",
			mutate: func(in *Input) { in.Courses[0].Duration = 0 },
			field:  "courses[0].duration",
		},
		{
			name:   "课次为负",
			mutate: func(in *Input) { in.Courses[0].Lectures = -1 },
			field:  "courses[0].lectures",
		},
		{
			name:   "教师为空",
			mutate: func(in *Input) { in.Courses[0].Teacher = "" },
			field:  "courses[0].teacher",
		},
		{
			name:   "可用时间倒置",
			mutate: func(in *Input) { in.Teachers["Smith"] = TeacherAvailability{StartHour: 12, EndHour: 9} },
			field:  "teachers[Smith].end_hour",
		},
		{
			name:   "求解时限为负",
			mutate: func(in *Input) { in.MaxSolveSeconds = -1 },
			field:  "max_solve_seconds",
		},
		{
			name:   "求解时限过大",
			mutate: func(in *Input) { in.MaxSolveSeconds = 1e12 },
			field:  "max_solve_seconds",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			err := in.Validate()
			if i == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeConfig))
			if tt.field != "" {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Contains(t, appErr.Fields, tt.field)
			}
		})
	}
}

func TestInput_Defaults(t *testing.T) {
	in := validInput()

	assert.Equal(t, TeacherAvailability{StartHour: 9, EndHour: 12}, in.Availability("Smith"))
	assert.Equal(t, DefaultAvailability, in.Availability("Unknown"))

	c := CourseDemand{Subject: "Art", Year: "Year2", Teacher: "Lee", Lectures: 2, Duration: 2}
	assert.Equal(t, SectionKey{Year: "Year2", Section: DefaultSection}, c.Key())
	assert.Equal(t, 4, c.Slots())

	idx := in.SectionIndex()
	assert.Equal(t, "R101", idx[SectionKey{Year: "Year1", Section: "A"}].Room)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(0, 2, 1, 1))
	assert.True(t, Overlaps(3, 1, 3, 1))
	assert.False(t, Overlaps(0, 2, 2, 1))
	assert.False(t, Overlaps(2, 1, 0, 2))
}

func TestTimetable_SectionKeys(t *testing.T) {
	tt := Timetable{
		"Year2": {"A": {}},
		"Year1": {"B": {}, "A": {}},
	}
	assert.Equal(t, []SectionKey{
		{Year: "Year1", Section: "A"},
		{Year: "Year1", Section: "B"},
		{Year: "Year2", Section: "A"},
	}, tt.SectionKeys())
}
