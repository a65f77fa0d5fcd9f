package services

import (
	"context"
	"log"
	"strings"
	"time"

	"chat-app/config"
	"chat-app/models"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser 注册新用户
func CreateUser(name, email, password, passwordConfirmation string) (*models.User, error) {
	if password != passwordConfirmation {
		return nil, errors.Wrap(ErrInvalidInput, "passwords do not match")
	}

	// 检查邮箱是否已被占用
	var existing models.User
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, errors.Wrap(ErrConflict, "this email is already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := config.DB.Create(&user).Error; err != nil {
		// 并发注册可能绕过上面的检查，唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Wrap(ErrConflict, "this email is already in use")
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID 根据ID查找用户
func FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		return nil, errors.Wrapf(ErrNotFound, "user %d", id)
	}
	return &user, nil
}

// FindUserByEmail 根据邮箱查找用户
func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, errors.Wrapf(ErrNotFound, "user %s", email)
	}
	return &user, nil
}

// ListUsers 返回全部用户的公开视图
func ListUsers() ([]models.PublicUser, error) {
	var users []models.User
	if err := config.DB.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	list := make([]models.PublicUser, 0, len(users))
	for i := range users {
		list = append(list, users[i].Public())
	}
	return list, nil
}

// UpdateUser 修改用户名和密码
func UpdateUser(user *models.User, name, password, passwordConfirmation string) error {
	if name != "" && name != user.Name {
		user.Name = strings.TrimSpace(name)
	}

	if password != "" || passwordConfirmation != "" {
		if password != passwordConfirmation {
			return errors.Wrap(ErrInvalidInput, "passwords do not match")
		}
		if len(password) < 8 {
			return errors.Wrap(ErrInvalidInput, "password must be at least 8 characters long")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hashed)
	}

	return config.DB.Save(user).Error
}

// SaveAvatarURL 保存头像地址
func SaveAvatarURL(user *models.User, url string) error {
	user.AvatarURL = url
	return config.DB.Save(user).Error
}

// DeleteUser 删除账号，级联清理头像、会话和消息
func DeleteUser(user *models.User) error {
	if user.AvatarURL != "" && Blob != nil {
		// 头像清理失败不阻塞删号
		if err := Blob.Delete(context.Background(), user.AvatarURL); err != nil {
			log.Printf("Failed to delete avatar for user %d: %v", user.ID, err)
		}
	}
	if err := DeleteUserRooms(user.ID); err != nil {
		return err
	}
	return config.DB.Delete(&models.User{}, user.ID).Error
}

// HandleConnect 用户上线：online=true，清空 last_seen，广播在线列表
func HandleConnect(userID uint) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return
	}
	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"online":    true,
		"last_seen": nil,
	}).Error; err != nil {
		log.Printf("Failed to mark user %d online: %v", userID, err)
		return
	}
	BroadcastRoster()
}

// HandleDisconnect 用户下线：online=false，记录 last_seen，广播在线列表
// 用户记录不存在时静默返回，断连清理路径不允许失败
func HandleDisconnect(userID uint) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return
	}
	now := time.Now()
	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"online":    false,
		"last_seen": now,
	}).Error; err != nil {
		log.Printf("Failed to mark user %d offline: %v", userID, err)
		return
	}
	BroadcastRoster()
}

// BroadcastRoster 向所有在线客户端广播用户列表
func BroadcastRoster() {
	users, err := ListUsers()
	if err != nil {
		log.Printf("Failed to load roster: %v", err)
		return
	}
	Manager.Broadcast(Event{Type: EventUsers, Data: users})
}
