package controllers

import (
	"net/http"
	"strconv"

	"chat-app/middlewares"
	"chat-app/services"
	"chat-app/utils"

	"github.com/gin-gonic/gin"
)

// GetMessages 返回当前用户与对方的全部历史消息
func GetMessages(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	otherID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	history, err := services.History(user.ID, uint(otherID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, history, nil)
}

// GetLatestMessages 返回当前用户每个会话的最新消息预览
func GetLatestMessages(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	previews, err := services.LatestMessages(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, previews, nil)
}
