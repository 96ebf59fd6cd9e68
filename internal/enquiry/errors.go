// internal/enquiry/errors.go
package enquiry

import (
	"errors"
	"fmt"

	"bus-enquiry-engine/internal/models"
)

var (
	ErrUnknownModule    = errors.New("UNKNOWN_MODULE")
	ErrMissingParameter = errors.New("MISSING_REQUIRED_PARAMETER")
	ErrQueryExecution   = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout     = errors.New("QUERY_TIMEOUT")
	ErrMalformedValue   = errors.New("MALFORMED_FILTER_VALUE")
	ErrTemplateBinding  = errors.New("TEMPLATE_BINDING_ERROR")
)

// DispatchError is the caller-visible failure for one dispatch. It names the
// module and, where relevant, the parameter or stage that failed. It never
// carries SQL text, connection details or credentials; those stay in the
// structured log.
type DispatchError struct {
	code   error
	Module models.ModuleID
	Param  string
	Stage  string
	Detail string
}

func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("%s: module=%s", e.code.Error(), e.Module)
	if e.Param != "" {
		msg += fmt.Sprintf(" param=%s", e.Param)
	}
	if e.Stage != "" {
		msg += fmt.Sprintf(" stage=%s", e.Stage)
	}
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	return msg
}

func (e *DispatchError) Unwrap() error {
	return e.code
}

// Code returns the stable error code string.
func (e *DispatchError) Code() string {
	return e.code.Error()
}

func newUnknownModuleError(module models.ModuleID) *DispatchError {
	return &DispatchError{code: ErrUnknownModule, Module: module}
}

func newMissingParameterError(module models.ModuleID, param string) *DispatchError {
	return &DispatchError{code: ErrMissingParameter, Module: module, Param: param}
}

func newQueryError(module models.ModuleID, stage string) *DispatchError {
	return &DispatchError{code: ErrQueryExecution, Module: module, Stage: stage}
}

func newQueryTimeoutError(module models.ModuleID) *DispatchError {
	return &DispatchError{code: ErrQueryTimeout, Module: module, Stage: "execute"}
}

func newMalformedValueError(module models.ModuleID, param, detail string) *DispatchError {
	return &DispatchError{code: ErrMalformedValue, Module: module, Param: param, Detail: detail}
}

func newTemplateBindingError(module models.ModuleID, detail string) *DispatchError {
	return &DispatchError{code: ErrTemplateBinding, Module: module, Stage: "render", Detail: detail}
}

// errCode extracts the stable code for metrics labels.
func errCode(err error) string {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code()
	}
	return "INTERNAL"
}
