package services

import (
	"testing"
	"time"

	"chat-app/config"
	"chat-app/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 用内存 sqlite 替换全局数据库连接
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// sqlite 只支持单个写连接
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.ChatRoom{}, &models.Message{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	config.DB = db
	config.C = &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
}

func createTestUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := CreateUser(name, email, "password123", "password123")
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}
