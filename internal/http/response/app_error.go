package response

// AppError 携带业务码的错误包装，供处理器统一转换为响应信封
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap 支持 errors.Is / errors.As 链式匹配
func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装底层错误并附加业务码
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
