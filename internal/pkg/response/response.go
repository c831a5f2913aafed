// Package response shapes every API reply as the proxyutil envelope
// {code, message, data}. Business failures ride an HTTP 200 with a
// non-zero code; clients switch on the code, not the HTTP status.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

// AsCodeErr pairs a stable error code with a client-facing message.
// Codes live in internal/pkg/errcode.
func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}
