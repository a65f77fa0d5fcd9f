package controllers

import (
	"net/http"

	"chat-app/services"
	"chat-app/utils"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// respondServiceError 把业务错误映射为 HTTP 状态码
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err.Error())
	default:
		utils.RespondError(c, http.StatusInternalServerError, "internal server error")
	}
}
