package config

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 全局数据库连接
var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB() {
	db, err := gorm.Open(mysql.Open(C.MySQLDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	DB = db
}
