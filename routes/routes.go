package routes

import (
	"chat-app/config"
	"chat-app/controllers"
	"chat-app/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes() *gin.Engine {

	r := gin.Default()
	// 配置跨域中间件
	corsConfig := cors.Config{
		AllowOrigins:     config.C.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	// 推送通道，凭证放在首帧里校验
	r.GET("/ws", controllers.WSController)

	api := r.Group("/api")

	api.POST("/register", controllers.Register)
	api.POST("/login", controllers.Login)
	api.POST("/refresh", controllers.Refresh)

	{
		api.Use(middlewares.TokenAuthMiddleware())
		api.GET("/userinfo", controllers.GetUserInfo)
		api.GET("/users", controllers.GetUsers)
		api.POST("/users/update", controllers.UpdateUser)
		api.DELETE("/users", controllers.DeleteUser)
		api.POST("/users/avatar", controllers.UploadAvatar)
		api.GET("/messages/:user_id", controllers.GetMessages)
		api.GET("/latest-messages", controllers.GetLatestMessages)
	}

	return r
}
