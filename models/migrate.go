package models

import (
	"log"

	"chat-app/config"
)

// Migrate 自动迁移表结构
func Migrate() {
	if err := config.DB.AutoMigrate(
		&User{},
		&ChatRoom{},
		&Message{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}
