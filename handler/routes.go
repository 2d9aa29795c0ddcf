package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"threadsnet/metrics"
	"threadsnet/middleware"
	"threadsnet/model"
	"threadsnet/presence"
	"threadsnet/service"
	"threadsnet/storage"
	"threadsnet/utils"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	Users         *service.UserService
	Credentials   *service.CredentialService
	Relationships *service.RelationshipService
	Friends       *service.FriendService
	Posts         *service.PostService
	Comments      *service.CommentService
	Conversations *service.ConversationService
	Messages      *service.MessageService
	Moderation    *service.ModerationService
	Settings      *service.SystemSettingsService
	Registry      *presence.Registry

	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // nil 时不暴露 /metrics
	CORSOrigins []string
	AuthLimiter *middleware.IPRateLimiter // nil 时不限流
	LocalMedia  *storage.LocalStorage     // 非 nil 时挂载静态文件
}

// NewRouter 组装全部路由
func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.RequestLogger(d.Metrics))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.CORSOrigins
	if len(d.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, "status", "ok")
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.LocalMedia != nil && strings.HasPrefix(d.LocalMedia.BaseURL(), "/") {
		r.StaticFS(d.LocalMedia.BaseURL(), http.Dir(d.LocalMedia.BasePath()))
	}

	hub := NewHub(d.Registry, d.Messages, d.Credentials, d.CORSOrigins)
	r.GET("/ws", hub.HandleWebSocket)

	userH := NewUserHandler(d.Users, d.Relationships, d.Credentials)
	relH := NewRelationshipHandler(d.Relationships)
	postH := NewPostHandler(d.Posts)
	commentH := NewCommentHandler(d.Comments)
	friendH := NewFriendHandler(d.Friends)
	msgH := NewMessageHandler(d.Messages)
	convH := NewConversationHandler(d.Conversations)
	wordH := NewSensitiveWordHandler(d.Moderation)
	sysH := NewSystemSettingsHandler(d.Settings)

	auth := middleware.AuthMiddleware(d.Credentials)
	staff := middleware.RequireAdminOrStaff()

	api := r.Group("/api")

	// 用户
	public := api.Group("/user")
	if d.AuthLimiter != nil {
		public.Use(d.AuthLimiter.Middleware())
	}
	{
		public.POST("/register", userH.Register)
		public.POST("/login", userH.Login)
		public.POST("/logout", userH.Logout)
		public.POST("/refreshCreateNewAccessToken", userH.RefreshAccessToken)
		public.POST("/forgotPassword", userH.ForgotPassword)
		public.PUT("/resetPassword", userH.ResetPassword)
	}
	user := api.Group("/user", auth)
	{
		user.GET("/getDetailUser", userH.GetDetailUser)
		user.PUT("/updateInfoFromUser", userH.UpdateInfoFromUser)
		user.POST("/changePassword", userH.ChangePassword)
		user.GET("/profile/:query", userH.GetUserProfile)
		user.PUT("/follow/:userId", relH.FollowUser)
		user.PUT("/blocked/:userId", relH.BlockUser)
		user.PUT("/unblocked/:userId", relH.UnblockUser)
		user.GET("/getBlockedListUsers", relH.GetBlockedUsers)

		user.GET("/getAllUsers", staff, userH.GetAllUsers)
		user.POST("/createUserFromAdmin", staff, userH.CreateUserFromAdmin)
		user.PUT("/updateInfoFromAdmin/:userId", staff, userH.UpdateInfoFromAdmin)
		user.PUT("/locked/:userId", staff, userH.LockedUser)
		user.DELETE("/:userId", staff, userH.DeleteUser)
	}

	// 帖子
	post := api.Group("/post", auth)
	{
		post.GET("/getAllPosts", postH.GetAllPosts)
		post.GET("/public", postH.PublicFeed)
		post.GET("/following", postH.FollowingFeed)
		post.GET("/friends", postH.FriendFeed)
		post.GET("/liked", postH.LikedFeed)
		post.GET("/saved", postH.SavedFeed)
		post.GET("/user/:username", postH.UserPosts)
		post.POST("/createPost", postH.CreatePost)
		post.PUT("/liked/:postId", postH.LikePost)
		post.PUT("/saved/:postId", postH.SavePost)
		post.PUT("/reposted/:postId", postH.RepostPost)
		post.PUT("/visibility/:postId", postH.UpdateVisibility)
		post.GET("/:postId", postH.GetPost)
		post.PUT("/:postId", postH.UpdatePost)
		post.DELETE("/:postId", postH.DeletePost)
	}

	// 评论与回复
	comment := api.Group("/comment", auth)
	{
		comment.POST("/create/reply/:commentId", commentH.CreateReply)
		comment.PUT("/update/:commentId/reply/:replyId", commentH.UpdateReply)
		comment.DELETE("/delete/:commentId/reply/:replyId", commentH.DeleteReply)
		comment.POST("/like/:commentId/reply/:replyId", commentH.LikeReply)
		comment.POST("/like/:commentId", commentH.LikeComment)
		comment.GET("/post/:postId", commentH.GetPostComments)
		comment.POST("/:postId", commentH.CreateComment)
		comment.PUT("/:commentId", commentH.UpdateComment)
		comment.DELETE("/:commentId", commentH.DeleteComment)
	}

	// 好友
	friend := api.Group("/friend", auth)
	{
		friend.POST("/addFriend/:userId", friendH.AddFriend)
		friend.POST("/acceptFriend/:requestId", friendH.AcceptFriend)
		friend.POST("/rejectFriend/:requestId", friendH.RejectFriend)
		friend.DELETE("/unfriend/:friendId", friendH.Unfriend)
		friend.GET("/list", friendH.ListFriends)
		friend.GET("/pending", friendH.ListPending)
	}

	// 私信
	message := api.Group("/message", auth)
	{
		message.GET("/conversations", convH.GetConversations)
		message.POST("/conversations/:userId", convH.CreatePrivateConversation)
		message.GET("/:otherUserId", msgH.GetMessages)
		message.POST("/", msgH.SendMessage)
	}

	// 敏感词
	r.GET("/api/sensitiveWord/getSensitiveWords", wordH.GetSensitiveWords)
	words := api.Group("/sensitiveWord", auth, staff)
	{
		words.POST("/addSensitiveWords", wordH.AddSensitiveWords)
		words.DELETE("/deleteSensitiveWord", wordH.DeleteSensitiveWord)
	}

	// 系统配置
	admin := api.Group("/admin", auth, middleware.RequireRoles(model.RoleAdmin))
	{
		admin.GET("/settings", sysH.GetSystemSettings)
		admin.PUT("/settings/:key", sysH.UpdateSystemSetting)
		admin.POST("/settings/reload", sysH.ReloadSystemSettings)
	}

	return r
}
