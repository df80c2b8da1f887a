package audit

import (
	"errors"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

// ErrorInfo is the caller-facing description of a failed audit.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Response is the structured outcome of an audit.
type Response struct {
	Result        *model.AuditResult `json:"result,omitempty"`
	Error         *ErrorInfo         `json:"error,omitempty"`
	ConflictCount int                `json:"conflict_count"`
	Success       bool               `json:"success"`
}

// NewResponse maps an audit result and error to a Response.
func NewResponse(result model.AuditResult, err error) Response {
	if err == nil {
		return Response{
			Success:       true,
			ConflictCount: result.ConflictCount,
			Result:        &result,
		}
	}

	code, details := common.Classify(err)
	message := err.Error()
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		message = userErr.UserMessage
	}

	return Response{
		Success: false,
		Error: &ErrorInfo{
			Message: message,
			Code:    code,
			Details: details,
		},
	}
}
