package response

import "github.com/gin-gonic/gin"

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Write 按 code 设置 HTTP 状态并写出信封
func Write(c *gin.Context, code int, r Resp) {
	c.JSON(Status(code), r)
}

// Abort 中断后续 handler 并写出错误信封
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(Status(code), Error(code, msg))
}
