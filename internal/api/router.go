package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xDhruboVai/BRACU-Student-Routine-Management-System/docs"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/auth"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/config"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
)

// @title           BRACU Routine API
// @version         1.0
// @description     Course tracking backend: classrooms, courses, marks, events and reminders.
// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func SetupRouter(cfg *config.Config, store *db.Store, authSvc *auth.Service) *gin.Engine {
	r := gin.Default()
	srv := &Server{cfg: cfg, store: store}

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		if err := store.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "db_ping_error"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/auth/signup", auth.SignupHandler(authSvc))
	r.POST("/auth/login", auth.LoginHandler(authSvc))
	r.POST("/auth/verify-otp", auth.VerifyOtpHandler(authSvc))
	r.POST("/auth/refresh", auth.RefreshHandler(authSvc))

	r.GET("/resources/general", srv.GetGeneralResources)

	// Protected
	authGroup := r.Group("/")
	authGroup.Use(auth.Middleware(cfg))
	{
		authGroup.GET("/user/me", srv.GetMe)
		authGroup.GET("/user/activity", srv.GetActivity)

		authGroup.GET("/classrooms", srv.ListClassrooms)
		authGroup.POST("/classrooms", srv.CreateClassroom)
		authGroup.DELETE("/classrooms/:id", srv.DeleteClassroom)
		authGroup.GET("/my/classrooms", srv.ListEnrolled)
		authGroup.GET("/my/teaching", srv.ListTeaching)
		authGroup.POST("/classrooms/:id/enroll", srv.Enroll)
		authGroup.POST("/classrooms/:id/teach", srv.Teach)
		authGroup.GET("/classrooms/:id/resources", srv.ListResources)
		authGroup.POST("/classrooms/:id/resources", srv.AddResource)
		authGroup.GET("/classrooms/:id/events", srv.ListClassEvents)
		authGroup.POST("/classrooms/:id/events", srv.AddClassEvent)
		authGroup.DELETE("/class-events/:id", srv.DeleteClassEvent)

		authGroup.POST("/events", srv.AddPersonalEvent)
		authGroup.DELETE("/events/:id", srv.DeletePersonalEvent)
		authGroup.GET("/calendar", srv.GetCalendar)

		authGroup.GET("/courses", srv.ListCourses)
		authGroup.POST("/courses", srv.CreateCourse)
		authGroup.DELETE("/courses/:id", srv.DeleteCourse)
		authGroup.GET("/courses/:id/groups", srv.ListGroups)
		authGroup.POST("/courses/:id/groups", srv.CreateGroup)
		authGroup.DELETE("/groups/:id", srv.DeleteGroup)
		authGroup.GET("/courses/:id/marks", srv.ListMarks)
		authGroup.POST("/courses/:id/marks", srv.UpsertMark)
		authGroup.POST("/courses/:id/marks/import", srv.ImportMarks)
		authGroup.DELETE("/marks/:id", srv.DeleteMark)
		authGroup.GET("/courses/:id/groups/:gid/average", srv.GroupAverage)
		authGroup.GET("/courses/:id/average", srv.CourseAverage)
	}

	return r
}
