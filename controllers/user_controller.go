package controllers

import (
	"net/http"
	"path/filepath"

	"chat-app/middlewares"
	"chat-app/services"
	"chat-app/utils"

	"github.com/gin-gonic/gin"
)

// 头像上传上限 10MB
const maxAvatarSize = 10 * 1024 * 1024

// UserMeResponse 当前用户信息
type UserMeResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GetUserInfo 返回当前认证用户的信息
func GetUserInfo(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	utils.RespondSuccess(c, UserMeResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}, nil)
}

// GetUsers 返回全部用户的公开视图
func GetUsers(c *gin.Context) {
	users, err := services.ListUsers()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, users, nil)
}

// UpdateUser 修改用户名/密码，成功后广播在线列表
func UpdateUser(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input struct {
		Name                 string `json:"name"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.UpdateUser(user, input.Name, input.Password, input.PasswordConfirmation); err != nil {
		respondServiceError(c, err)
		return
	}

	services.BroadcastRoster()
	utils.RespondSuccess(c, UserMeResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}, nil)
}

// DeleteUser 删除账号并广播删除事件
func DeleteUser(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	userID := user.ID
	if err := services.DeleteUser(user); err != nil {
		respondServiceError(c, err)
		return
	}

	services.Manager.Broadcast(services.Event{Type: services.EventUserDeleted, Data: userID})
	utils.RespondSuccess(c, gin.H{"message": "User deleted successfully"}, nil)
}

// UploadAvatar 上传头像到 blob 存储并广播在线列表
func UploadAvatar(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if services.Blob == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Blob storage not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is empty"})
		return
	}
	if fileHeader.Size > maxAvatarSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File size cannot exceed 10MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := services.Blob.Upload(c.Request.Context(), file, fileHeader.Size,
		filepath.Base(fileHeader.Filename), contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	if err := services.SaveAvatarURL(user, url); err != nil {
		respondServiceError(c, err)
		return
	}

	services.BroadcastRoster()
	utils.RespondSuccess(c, user.Public(), nil)
}
