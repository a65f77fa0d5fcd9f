package services

import (
	"sync"
	"testing"

	"chat-app/config"
	"chat-app/models"

	"github.com/pkg/errors"
)

func TestRoomIDCommutative(t *testing.T) {
	if got := RoomID(3, 7); got != "3_7" {
		t.Fatalf("RoomID(3, 7) = %q, want %q", got, "3_7")
	}
	if got := RoomID(7, 3); got != "3_7" {
		t.Fatalf("RoomID(7, 3) = %q, want %q", got, "3_7")
	}
	if got := RoomID(5, 5); got != "5_5" {
		t.Fatalf("RoomID(5, 5) = %q, want %q", got, "5_5")
	}
}

func TestGetOrCreateRoom(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	room, err := GetOrCreateRoom(a.ID, b.ID, true)
	if err != nil {
		t.Fatalf("GetOrCreateRoom: %v", err)
	}
	if room.LatestMessageID != nil {
		t.Fatal("new room should have no latest message")
	}
	if room.ReadStatus {
		t.Fatal("new room should be unread")
	}

	// 参数顺序颠倒应命中同一个会话
	same, err := GetOrCreateRoom(b.ID, a.ID, true)
	if err != nil {
		t.Fatalf("GetOrCreateRoom reversed: %v", err)
	}
	if same.ID != room.ID {
		t.Fatalf("resolve not commutative: %q vs %q", same.ID, room.ID)
	}
	if room.ParticipantA >= room.ParticipantB {
		t.Fatalf("participants not stored in ascending order: %d, %d",
			room.ParticipantA, room.ParticipantB)
	}
	if got := RoomID(room.ParticipantA, room.ParticipantB); got != room.ID {
		t.Fatalf("participant columns inconsistent with room id: %q vs %q", got, room.ID)
	}

	var count int64
	config.DB.Model(&models.ChatRoom{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 room, got %d", count)
	}
}

func TestGetOrCreateRoomAbsent(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	_, err := GetOrCreateRoom(a.ID, b.ID, false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// 不应该有副作用
	var count int64
	config.DB.Model(&models.ChatRoom{}).Count(&count)
	if count != 0 {
		t.Fatalf("lookup without create must not create rooms, got %d", count)
	}
}

func TestConcurrentRoomCreation(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := GetOrCreateRoom(a.ID, b.ID, true)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := GetOrCreateRoom(b.ID, a.ID, true)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent GetOrCreateRoom: %v", err)
		}
	}

	var count int64
	config.DB.Model(&models.ChatRoom{}).Count(&count)
	if count != 1 {
		t.Fatalf("concurrent creation produced %d rooms, want 1", count)
	}
}

func TestMarkLatestReadMissingRoom(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	_, err := MarkLatestRead(a.ID, b.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// 已读确认不允许悄悄建房
	var count int64
	config.DB.Model(&models.ChatRoom{}).Count(&count)
	if count != 0 {
		t.Fatalf("MarkLatestRead created %d rooms, want 0", count)
	}
}

func TestMarkLatestRead(t *testing.T) {
	setupTestDB(t)
	a := createTestUser(t, "Alice", "alice@example.com")
	b := createTestUser(t, "Bob", "bob@example.com")

	msg, err := SaveMessage(a.ID, b.ID, "hello")
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}

	preview, err := MarkLatestRead(b.ID, a.ID)
	if err != nil {
		t.Fatalf("MarkLatestRead: %v", err)
	}
	if !preview.ReadStatus {
		t.Fatal("preview should be marked read")
	}
	if preview.Content != "hello" || preview.SenderID != a.ID || preview.RecipientID != b.ID {
		t.Fatalf("unexpected preview: %+v", preview)
	}
	if preview.ConversationID != msg.ConversationID {
		t.Fatalf("preview conversation %q, want %q", preview.ConversationID, msg.ConversationID)
	}

	var room models.ChatRoom
	if err := config.DB.First(&room, "id = ?", msg.ConversationID).Error; err != nil {
		t.Fatalf("load room: %v", err)
	}
	if !room.ReadStatus {
		t.Fatal("room read status should be persisted")
	}
}

func TestDeleteUserRooms(t *testing.T) {
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
	mustSave(a.ID, b.ID, "a to b")
	mustSave(b.ID, a.ID, "b to a")
	mustSave(a.ID, c.ID, "a to c")
	mustSave(b.ID, c.ID, "b to c")

	if err := DeleteUserRooms(a.ID); err != nil {
		t.Fatalf("DeleteUserRooms: %v", err)
	}

	// a 参与的会话和消息全部清掉，b 和 c 之间的不受影响
	var rooms []models.ChatRoom
	config.DB.Find(&rooms)
	if len(rooms) != 1 || rooms[0].ID != RoomID(b.ID, c.ID) {
		t.Fatalf("unexpected surviving rooms: %+v", rooms)
	}

	var messages []models.Message
	config.DB.Find(&messages)
	if len(messages) != 1 {
		t.Fatalf("expected 1 surviving message, got %d", len(messages))
	}
	for _, m := range messages {
		if m.SenderID == a.ID || m.RecipientID == a.ID {
			t.Fatalf("orphan message still references deleted user: %+v", m)
		}
	}
}
