package handlers

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"VidTube.com/pkg/errno"
)

type Response struct {
	StatusCode int64       `json:"status_code"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// SendResponse pack response
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	Err := errno.ConvertErr(err)
	c.JSON(consts.StatusOK, Response{
		StatusCode: Err.ErrCode,
		Data:       data,
		Message:    Err.ErrMsg,
		Success:    Err.ErrCode < 400,
	})
}

type TweetContentParam struct {
	Content string `form:"content" json:"content"`
}

type ListTweetsParam struct {
	Page  int64 `query:"page"`
	Limit int64 `query:"limit"`
}
