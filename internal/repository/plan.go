package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
)

// PlanRepositoryInterface 排课方案仓储接口
type PlanRepositoryInterface interface {
	LoadInput(ctx context.Context, planID uuid.UUID) (*model.Input, error)
}

// PlanRepository 排课方案仓储实现（只读）
type PlanRepository struct {
	db DB
}

// NewPlanRepository 创建排课方案仓储
func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// LoadInput 读取方案并组装为引擎输入
func (r *PlanRepository) LoadInput(ctx context.Context, planID uuid.UUID) (*model.Input, error) {
	in := &model.Input{Teachers: make(map[string]model.TeacherAvailability)}

	query := `
		SELECT allow_free_periods, max_solve_seconds
		FROM timetable_plans
		WHERE id = $1
	`
	err := r.db.QueryRowContext(ctx, query, planID).Scan(&in.AllowFreePeriods, &in.MaxSolveSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("排课方案", planID.String())
	}
	if err != nil {
		return nil, dbError(err, "获取排课方案失败")
	}

	if in.WorkingDays, err = r.workingDays(ctx, planID); err != nil {
		return nil, err
	}
	if err := r.teachers(ctx, planID, in.Teachers); err != nil {
		return nil, err
	}
	if in.Sections, err = r.sections(ctx, planID); err != nil {
		return nil, err
	}
	if in.Courses, err = r.courses(ctx, planID); err != nil {
		return nil, err
	}

	return in, nil
}

func (r *PlanRepository) workingDays(ctx context.Context, planID uuid.UUID) ([]model.WorkingDay, error) {
	query := `
		SELECT day, start_hour, total_hours
		FROM plan_working_days
		WHERE plan_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, dbError(err, "查询工作日失败")
	}
	defer rows.Close()

	var days []model.WorkingDay
	for rows.Next() {
		var d model.WorkingDay
		if err := rows.Scan(&d.Day, &d.StartHour, &d.TotalHours); err != nil {
			return nil, dbError(err, "扫描工作日失败")
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "查询工作日失败")
	}
	return days, nil
}

func (r *PlanRepository) teachers(ctx context.Context, planID uuid.UUID, out map[string]model.TeacherAvailability) error {
	query := `
		SELECT teacher, start_hour, end_hour
		FROM plan_teachers
		WHERE plan_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return dbError(err, "查询教师可用时间失败")
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var avail model.TeacherAvailability
		if err := rows.Scan(&name, &avail.StartHour, &avail.EndHour); err != nil {
			return dbError(err, "扫描教师可用时间失败")
		}
		out[name] = avail
	}
	if err := rows.Err(); err != nil {
		return dbError(err, "查询教师可用时间失败")
	}
	return nil
}

func (r *PlanRepository) sections(ctx context.Context, planID uuid.UUID) ([]model.SectionRef, error) {
	query := `
		SELECT year, section, room, capacity
		FROM plan_sections
		WHERE plan_id = $1
		ORDER BY year, section
	`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, dbError(err, "查询班级失败")
	}
	defer rows.Close()

	var sections []model.SectionRef
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, dbError(err, "扫描班级失败")
		}
		sections = append(sections, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "查询班级失败")
	}
	return sections, nil
}

func scanSection(s Scanner) (*model.SectionRef, error) {
	var ref model.SectionRef
	var room sql.NullString
	if err := s.Scan(&ref.Year, &ref.Section, &room, &ref.Capacity); err != nil {
		return nil, err
	}
	ref.Room = room.String
	return &ref, nil
}

func (r *PlanRepository) courses(ctx context.Context, planID uuid.UUID) ([]model.CourseDemand, error) {
	query := `
		SELECT subject, year, section, teacher, lectures, duration
		FROM plan_courses
		WHERE plan_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, dbError(err, "查询课程需求失败")
	}
	defer rows.Close()

	var courses []model.CourseDemand
	for rows.Next() {
		var c model.CourseDemand
		var section sql.NullString
		if err := rows.Scan(&c.Subject, &c.Year, &section, &c.Teacher, &c.Lectures, &c.Duration); err != nil {
			return nil, dbError(err, "扫描课程需求失败")
		}
		c.Section = section.String
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "查询课程需求失败")
	}
	return courses, nil
}

func dbError(err error, message string) *apperrors.AppError {
	return apperrors.Wrap(err, apperrors.CodeDatabaseError, message)
}
