package services

import (
	"fmt"

	"chat-app/config"
	"chat-app/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RoomID 生成私聊会话ID，两个用户ID升序拼接，保证交换律
func RoomID(userID1, userID2 uint) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return fmt.Sprintf("%d_%d", userID1, userID2)
}

// GetOrCreateRoom 查找私聊会话，createIfAbsent 为 true 时不存在则创建。
// 并发的首次创建靠主键唯一约束兜底：插入冲突视为创建成功，重新读取即可。
func GetOrCreateRoom(userID1, userID2 uint, createIfAbsent bool) (*models.ChatRoom, error) {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	roomID := RoomID(userID1, userID2)

	var room models.ChatRoom
	err := config.DB.Where("id = ?", roomID).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !createIfAbsent {
		return nil, errors.Wrapf(ErrNotFound, "chat room %s", roomID)
	}

	newRoom := models.ChatRoom{
		ID:           roomID,
		ParticipantA: userID1,
		ParticipantB: userID2,
	}
	if err := config.DB.Create(&newRoom).Error; err != nil {
		// 可能被并发的另一端先建，重查一次
		if err2 := config.DB.Where("id = ?", roomID).First(&room).Error; err2 == nil {
			return &room, nil
		}
		return nil, fmt.Errorf("failed to create chat room: %w", err)
	}
	return &newRoom, nil
}

// MarkLatestMessage 更新会话最新消息指针，新消息总是未读
func MarkLatestMessage(roomID string, messageID uint) error {
	return config.DB.Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"latest_message_id": messageID,
			"read_status":       false,
		}).Error
}

// SetReadStatus 直接设置会话的已读标记
func SetReadStatus(roomID string, status bool) error {
	return config.DB.Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Update("read_status", status).Error
}

// MarkLatestRead 将会话最新消息标记为已读，会话不存在时不会创建
func MarkLatestRead(userID, otherUserID uint) (*models.LatestMessageResponse, error) {
	room, err := GetOrCreateRoom(userID, otherUserID, false)
	if err != nil {
		return nil, err
	}
	if room.LatestMessageID == nil {
		return nil, errors.Wrapf(ErrNotFound, "chat room %s has no messages", room.ID)
	}

	if err := SetReadStatus(room.ID, true); err != nil {
		return nil, err
	}

	var latest models.Message
	if err := config.DB.First(&latest, *room.LatestMessageID).Error; err != nil {
		return nil, errors.Wrapf(ErrNotFound, "message %d", *room.LatestMessageID)
	}
	return &models.LatestMessageResponse{
		ReadStatus:     true,
		SenderID:       latest.SenderID,
		RecipientID:    latest.RecipientID,
		Content:        latest.Content,
		ConversationID: room.ID,
		Timestamp:      latest.Timestamp,
	}, nil
}

// LatestMessages 返回用户参与的所有会话的最新消息预览
func LatestMessages(userID uint) ([]models.LatestMessageResponse, error) {
	var rooms []models.ChatRoom
	err := config.DB.
		Preload("LatestMessage").
		Where("latest_message_id IS NOT NULL AND (participant_a = ? OR participant_b = ?)", userID, userID).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	previews := make([]models.LatestMessageResponse, 0, len(rooms))
	for _, room := range rooms {
		if room.LatestMessage == nil {
			continue
		}
		previews = append(previews, models.LatestMessageResponse{
			ReadStatus:     room.ReadStatus,
			SenderID:       room.LatestMessage.SenderID,
			RecipientID:    room.LatestMessage.RecipientID,
			Content:        room.LatestMessage.Content,
			ConversationID: room.ID,
			Timestamp:      room.LatestMessage.Timestamp,
		})
	}
	return previews, nil
}

// DeleteUserRooms 级联删除用户参与的全部会话：
// 先摘掉最新消息指针避免悬挂引用，再删消息，最后删会话
func DeleteUserRooms(userID uint) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		var rooms []models.ChatRoom
		if err := tx.Where("participant_a = ? OR participant_b = ?", userID, userID).
			Find(&rooms).Error; err != nil {
			return err
		}

		for _, room := range rooms {
			if err := tx.Model(&models.ChatRoom{}).
				Where("id = ?", room.ID).
				Update("latest_message_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("conversation_id = ?", room.ID).
				Delete(&models.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.ChatRoom{}, "id = ?", room.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
