package main

import (
	"fmt"
	"log"

	"chat-app/config"
	"chat-app/models"
	"chat-app/routes"
	"chat-app/services"
)

func main() {
	// 加载配置
	conf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	config.InitDB()
	// 自动迁移
	models.Migrate()

	// 初始化 blob 存储
	if err := services.InitBlob(); err != nil {
		log.Fatalf("Failed to init blob storage: %v", err)
	}

	// 注册路由
	r := routes.RegisterRoutes()

	// 启动服务
	if err := r.Run(fmt.Sprintf(":%d", conf.Port)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
