package response

import (
	"errors"
	"net/http"

	appErr "github.com/haneimo/harts-viewer/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data, "")
}

func SuccessWithMsg(c *gin.Context, data interface{}, msg string) {
	JSON(c, http.StatusOK, data, msg)
}

func Error(c *gin.Context, status int, msg string) {
	JSON(c, status, gin.H{}, msg)
}

// FromError maps the package-level sentinel errors onto HTTP statuses.
// Navigation validation errors are 400s; lookups are 404s; anything
// unrecognized is a 500 with the underlying message.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrMalformedLog),
		errors.Is(err, appErr.ErrTurnOutOfRange),
		errors.Is(err, appErr.ErrRoundOutOfRange),
		errors.Is(err, appErr.ErrRoundNotFound),
		errors.Is(err, appErr.ErrInvalidFraction),
		errors.Is(err, appErr.ErrInvalidSpeed):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErr.ErrSessionNotFound),
		errors.Is(err, appErr.ErrLogNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrFetchFailed):
		Error(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, err.Error())
	default:
		Error(c, http.StatusInternalServerError, err.Error())
	}
}

func JSON(c *gin.Context, status int, data interface{}, msg string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Body{
		Code: status,
		Data: data,
		Msg:  msg,
	})
}
