package errno

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes double as the status_code field of the response envelope.
// A code below 400 means success.
const (
	SuccessCode         = 200
	ParamErrCode        = 400
	UnauthorizedErrCode = 403
	NotFoundErrCode     = 404
	ServiceErrCode      = 500
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{ErrCode: code, ErrMsg: msg}
}

// WithMessage derives an error of the same kind with a different message.
func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

var (
	Success         = NewErrNo(SuccessCode, "Success")
	ServiceErr      = NewErrNo(ServiceErrCode, "Service is unable to handle the request")
	ParamErr        = NewErrNo(ParamErrCode, "Wrong or missing parameter")
	UnauthorizedErr = NewErrNo(UnauthorizedErrCode, "Unauthorized access")
	NotFoundErr     = NewErrNo(NotFoundErrCode, "Resource not found")
)

// ConvertErr folds an arbitrary error into an ErrNo. Errors that are not
// already tagged become ServiceErr with the original message attached.
func ConvertErr(err error) ErrNo {
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	s := ServiceErr
	if err != nil {
		s.ErrMsg = err.Error()
	}
	return s
}
