package domain

import (
	"fmt"
)

// RemoteError 交易所调用失败。Code/Message 为交易所原生错误码与信息，
// 传输层失败时 Code 为 0 且 Err 非空。
type RemoteError struct {
	Op         string
	StatusCode int
	Code       int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Code != 0 || e.Message != "" {
		return fmt.Sprintf("%s: APIError(code=%d): %s", e.Op, e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Op, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
