package errorx

import "fmt"

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is reports errors with the same code as equal, so sentinel errors still match
// after their message has been specialized.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// ErrorCode exposes the code to json-rpc clients.
func (e Error) ErrorCode() int {
	return int(e.Code)
}
