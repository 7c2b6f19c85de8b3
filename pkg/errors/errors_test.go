package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   string
		status int
	}{
		{name: "配置错误", err: ConfigError("未配置任何工作日"), kind: KindConfig, status: http.StatusBadRequest},
		{name: "请求格式错误", err: Wrap(errors.New("eof"), CodeInvalidInput, "解析请求失败"), kind: KindConfig, status: http.StatusBadRequest},
		{name: "空定义域", err: InfeasibleDomain("Math", "Year1", "A"), kind: KindInfeasibleDomain, status: http.StatusUnprocessableEntity},
		{name: "无解", err: UnsatisfiableModel(), kind: KindUnsatisfiableModel, status: http.StatusUnprocessableEntity},
		{name: "超时", err: TimeoutAbort(2 * time.Second), kind: KindTimeoutAbort, status: http.StatusGatewayTimeout},
		{name: "取消", err: Canceled(context.Canceled), kind: KindCanceled, status: 499},
		{name: "普通错误", err: errors.New("boom"), kind: KindInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ToFailure(tt.err)
			assert.Equal(t, tt.kind, f.ErrorKind)
			assert.NotEmpty(t, f.Message)
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestInfeasibleDomain_Fields(t *testing.T) {
	f := ToFailure(fmt.Errorf("solve: %w", InfeasibleDomain("Math", "Year1", "A")))

	assert.Equal(t, KindInfeasibleDomain, f.ErrorKind)
	assert.Equal(t, "Math", f.Fields["subject"])
	assert.Equal(t, "Year1", f.Fields["year"])
	assert.Equal(t, "A", f.Fields["section"])
}

func TestFromContext(t *testing.T) {
	timeout := FromContext(context.DeadlineExceeded, time.Second)
	assert.True(t, Is(timeout, CodeTimeoutAbort))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	canceled := FromContext(context.Canceled, time.Second)
	assert.Equal(t, CodeCanceled, GetCode(canceled))
}

func TestValidationErrors_ToAppError(t *testing.T) {
	ve := &ValidationErrors{}
	assert.False(t, ve.HasErrors())

	ve.Add("courses[0].duration", "不能小于 1")
	ve.Add("working_days", "工作日名称重复")
	require.True(t, ve.HasErrors())

	err := ve.ToAppError()
	assert.Equal(t, CodeConfig, err.Code)
	assert.Contains(t, err.Message, "courses[0].duration")
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))
}
