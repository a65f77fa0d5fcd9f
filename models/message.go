package models

import "time"

// Message 消息记录，创建后不可修改
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"type:varchar(64);index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	RecipientID    uint      `gorm:"index;not null" json:"recipient_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"` // 服务端落库时间，排序依据
}

// ChatMessageResponse 消息响应 DTO
type ChatMessageResponse struct {
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	SenderID       uint      `json:"sender_id"`
	RecipientID    uint      `json:"recipient_id"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// LatestMessageResponse 会话最新消息预览 DTO
type LatestMessageResponse struct {
	ReadStatus     bool      `json:"read_status"`
	SenderID       uint      `json:"sender_id"`
	RecipientID    uint      `json:"recipient_id"`
	Content        string    `json:"content"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}
