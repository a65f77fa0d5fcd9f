package models

import "time"

// ChatRoom 私聊会话，ID 由两个参与者ID升序拼接生成（"{min}_{max}"）
type ChatRoom struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)" json:"conversation_id"`
	ParticipantA    uint      `gorm:"index;not null" json:"participant_a"` // 较小的用户ID
	ParticipantB    uint      `gorm:"index;not null" json:"participant_b"` // 较大的用户ID
	LatestMessageID *uint     `json:"latest_message_id"`
	LatestMessage   *Message  `gorm:"foreignKey:LatestMessageID" json:"latest_message,omitempty"`
	ReadStatus      bool      `gorm:"default:false" json:"read_status"` // 最新消息是否已被对方读取
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
