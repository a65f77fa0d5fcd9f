package controllers

import (
	"net/http"

	"chat-app/models"
	"chat-app/services"
	"chat-app/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthResponse 登录/注册/刷新的令牌响应
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register 用户注册
func Register(c *gin.Context) {
	var input struct {
		Name                 string `json:"name" binding:"required"`
		Email                string `json:"email" binding:"required,email"`
		Password             string `json:"password" binding:"required"`
		PasswordConfirmation string `json:"password_confirmation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := services.CreateUser(input.Name, input.Email, input.Password, input.PasswordConfirmation)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tokens, err := issueTokens(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	utils.RespondSuccess(c, tokens, nil)
}

// Login 用户登录
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := services.FindUserByEmail(input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	tokens, err := issueTokens(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	utils.RespondSuccess(c, tokens, nil)
}

// Refresh 用刷新令牌换取新的访问令牌
func Refresh(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := services.ParseToken(input.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user, err := services.FindUserByID(claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	accessToken, err := services.GenerateAccessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	utils.RespondSuccess(c, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: input.RefreshToken,
	}, nil)
}

func issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := services.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := services.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
