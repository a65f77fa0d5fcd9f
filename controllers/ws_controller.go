package controllers

import (
	"chat-app/services"

	"github.com/gin-gonic/gin"
)

func WSController(ctx *gin.Context) {
	services.HandleWebSocket(ctx)
}
