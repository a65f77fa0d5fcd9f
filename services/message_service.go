package services

import (
	"strings"
	"time"

	"chat-app/config"
	"chat-app/models"

	"github.com/pkg/errors"
)

// SaveMessage 持久化一条消息并更新会话最新消息指针。
// 时间戳由服务端在落库时分配，客户端时间不可信。
func SaveMessage(senderID, recipientID uint, content string) (*models.ChatMessageResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "message content cannot be empty")
	}

	sender, err := FindUserByID(senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := FindUserByID(recipientID)
	if err != nil {
		return nil, err
	}

	room, err := GetOrCreateRoom(sender.ID, recipient.ID, true)
	if err != nil {
		return nil, err
	}

	message := models.Message{
		ConversationID: room.ID,
		SenderID:       sender.ID,
		RecipientID:    recipient.ID,
		Content:        content,
		Timestamp:      time.Now(),
	}
	if err := config.DB.Create(&message).Error; err != nil {
		return nil, err
	}

	if err := MarkLatestMessage(room.ID, message.ID); err != nil {
		return nil, err
	}

	return &models.ChatMessageResponse{
		ID:             message.ID,
		Content:        message.Content,
		SenderID:       message.SenderID,
		RecipientID:    message.RecipientID,
		ConversationID: message.ConversationID,
		Timestamp:      message.Timestamp,
	}, nil
}

// History 返回两个用户之间的全部消息，按时间戳升序，双向都包含
func History(userID1, userID2 uint) ([]models.ChatMessageResponse, error) {
	if _, err := FindUserByID(userID1); err != nil {
		return nil, err
	}
	if _, err := FindUserByID(userID2); err != nil {
		return nil, err
	}

	var messages []models.Message
	err := config.DB.
		Where("conversation_id = ?", RoomID(userID1, userID2)).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	history := make([]models.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		history = append(history, models.ChatMessageResponse{
			ID:             m.ID,
			Content:        m.Content,
			SenderID:       m.SenderID,
			RecipientID:    m.RecipientID,
			ConversationID: m.ConversationID,
			Timestamp:      m.Timestamp,
		})
	}
	return history, nil
}
