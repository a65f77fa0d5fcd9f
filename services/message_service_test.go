package services

import (
	"fmt"
	"testing"

	"chat-app/config"
	"chat-app/models"

	"github.com/pkg/errors"
)

func TestSaveMessageSetsLatestUnread(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	first, err := SaveMessage(a.ID, b.ID, "hi")
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	wantRoom := fmt.Sprintf("%d_%d", a.ID, b.ID)
	if first.ConversationID != wantRoom {
		t.Fatalf("conversation id %q, want %q", first.ConversationID, wantRoom)
	}

	// 标记已读后再来一条消息，必须重新变为未读
	if _, err := MarkLatestRead(b.ID, a.ID); err != nil {
		t.Fatalf("MarkLatestRead: %v", err)
	}

	second, err := SaveMessage(b.ID, a.ID, "yo")
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}

	var room models.ChatRoom
	if err := config.DB.First(&room, "id = ?", wantRoom).Error; err != nil {
		t.Fatalf("load room: %v", err)
	}
	if room.ReadStatus {
		t.Fatal("new message must reset read status to false")
	}
	if room.LatestMessageID == nil || *room.LatestMessageID != second.ID {
		t.Fatalf("latest message pointer = %v, want %d", room.LatestMessageID, second.ID)
	}

	// 发送方视角的最新消息预览
	previews, err := LatestMessages(a.ID)
	if err != nil {
		t.Fatalf("LatestMessages: %v", err)
	}
	if len(previews) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(previews))
	}
	p := previews[0]
	if p.Content != "yo" || p.ReadStatus || p.SenderID != b.ID || p.RecipientID != a.ID {
		t.Fatalf("unexpected preview: %+v", p)
	}
}

func TestSaveMessageEmptyContent(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := SaveMessage(a.ID, b.ID, content); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("content %q: expected ErrInvalidInput, got %v", content, err)
		}
	}

	var count int64
	config.DB.Model(&models.Message{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected message was persisted, count=%d", count)
	}
}

func TestSaveMessageUnknownUser(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")

	if _, err := SaveMessage(a.ID, 999, "hello"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}
	if _, err := SaveMessage(999, a.ID, "hello"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown sender, got %v", err)
	}
}

func TestHistoryOrderAndScope(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")
	c := createTestUser(t, "Carol", "carol@example.com")

	mustSave := func(sender, recipient uint, content string) {
		t.Helper()
		if _, err := SaveMessage(sender, recipient, content); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}
	mustSave(a.ID, b.ID, "hi")
	mustSave(b.ID, a.ID, "yo")
	mustSave(a.ID, c.ID, "unrelated")

	history, err := History(a.ID, b.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "hi" || history[0].SenderID != a.ID || history[0].RecipientID != b.ID {
		t.Fatalf("unexpected first message: %+v", history[0])
	}
	if history[1].Content != "yo" || history[1].SenderID != b.ID || history[1].RecipientID != a.ID {
		t.Fatalf("unexpected second message: %+v", history[1])
	}
	// 时间戳非降序
	if history[1].Timestamp.Before(history[0].Timestamp) {
		t.Fatal("history not in timestamp order")
	}

	// 双向查询结果一致
	reversed, err := History(b.ID, a.ID)
	if err != nil {
		t.Fatalf("History reversed: %v", err)
	}
	if len(reversed) != 2 || reversed[0].ID != history[0].ID {
		t.Fatal("history should be identical regardless of argument order")
	}
}
