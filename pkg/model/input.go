package model

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/paiban/kebiao/pkg/errors"
)

// Input 一次求解的完整输入，求解期间不可变
type Input struct {
	WorkingDays      []WorkingDay                   `json:"working_days" validate:"required,min=1,unique=Day,dive"`
	Teachers         map[string]TeacherAvailability `json:"teachers" validate:"omitempty,dive"`
	Sections         []SectionRef                   `json:"sections" validate:"omitempty,dive"`
	Courses          []CourseDemand                 `json:"courses" validate:"required,min=1,dive"`
	AllowFreePeriods bool                           `json:"allow_free_periods"`
	MaxSolveSeconds  float64                        `json:"max_solve_seconds" validate:"gte=0,lte=86400"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// 错误信息使用 JSON 字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate 校验输入，失败时返回 CONFIG_ERROR
func (in *Input) Validate() error {
	if len(in.WorkingDays) == 0 {
		return apperrors.ConfigError("未配置任何工作日")
	}
	if len(in.Courses) == 0 {
		return apperrors.ConfigError("未提供任何课程")
	}

	err := getValidator().Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, apperrors.CodeConfig, "输入校验失败")
	}

	ve := &apperrors.ValidationErrors{}
	for _, fe := range fieldErrs {
		ve.Add(fieldPath(fe), fieldMessage(fe))
	}
	return ve.ToAppError()
}

// fieldPath 去掉顶层结构体名，例如 Input.courses[0].duration -> courses[0].duration
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "min":
		return fmt.Sprintf("至少需要 %s 项", fe.Param())
	case "gte":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "lte":
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "gtfield":
		return "结束时间必须晚于开始时间"
	case "unique":
		return "工作日名称重复"
	default:
		return fmt.Sprintf("未通过 %s 校验", fe.Tag())
	}
}

// Availability 返回教师可用时间，未登记的教师使用默认窗口
func (in *Input) Availability(teacher string) TeacherAvailability {
	if a, ok := in.Teachers[teacher]; ok {
		return a
	}
	return DefaultAvailability
}

// SectionIndex 按班级标识索引班级
func (in *Input) SectionIndex() map[SectionKey]SectionRef {
	idx := make(map[SectionKey]SectionRef, len(in.Sections))
	for _, s := range in.Sections {
		idx[s.Key()] = s
	}
	return idx
}
