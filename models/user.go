package models

import "time"

// User 用户模型
type User struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string     `json:"email" gorm:"unique;not null"`
	Name      string     `json:"name"`
	Password  string     `json:"-" gorm:"not null"`
	Online    bool       `json:"online" gorm:"default:false"`
	LastSeen  *time.Time `json:"last_seen" gorm:"default:NULL"` // 在线时为 NULL
	AvatarURL string     `json:"avatar_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PublicUser 用户公开视图（在线列表广播用）
type PublicUser struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Online    bool       `json:"online"`
	LastSeen  *time.Time `json:"last_seen"`
	AvatarURL string     `json:"avatar_url"`
}

// Public 转换为公开视图
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Online:    u.Online,
		LastSeen:  u.LastSeen,
		AvatarURL: u.AvatarURL,
	}
}
