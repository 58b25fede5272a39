package api

import (
	"coachfit/coaching-app/internal/domain"
	"coachfit/coaching-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	coachService service.CoachService,
	clientService service.ClientService,
	exerciseService service.ExerciseService,
	programService service.ProgramService,
	templateService service.TemplateService,
	scheduleService service.ScheduleService,
	progressionService service.ProgressionService,
	workoutDayService service.WorkoutDayService,
) {

	authHandler := NewAuthHandler(authService)
	coachHandler := NewCoachHandler(coachService)
	clientHandler := NewClientHandler(clientService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	programHandler := NewProgramHandler(programService)
	templateHandler := NewTemplateHandler(templateService)
	scheduleHandler := NewScheduleHandler(scheduleService, progressionService)
	workoutDayHandler := NewWorkoutDayHandler(workoutDayService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Block type schemas (read-only reference data) ---
		protected.GET("/block-types", scheduleHandler.ListBlockTypes)
		protected.GET("/block-types/:blockType/schema", scheduleHandler.GetBlockSchema)

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleCoach), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", RoleMiddleware(domain.RoleCoach), exerciseHandler.GetCoachExercises)
			exerciseGroup.PUT("/:exerciseId", RoleMiddleware(domain.RoleCoach), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", RoleMiddleware(domain.RoleCoach), exerciseHandler.DeleteExercise)
		}

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/clients", coachHandler.AddClientByEmail)
			coachGroup.GET("/clients", coachHandler.GetManagedClients)
			coachGroup.GET("/clients/:clientId/photos", clientHandler.GetClientPhotos)

			// Workout templates
			coachGroup.POST("/templates", templateHandler.CreateTemplate)
			coachGroup.GET("/templates", templateHandler.GetCoachTemplates)
			coachGroup.GET("/templates/:templateId", templateHandler.GetTemplate)
			coachGroup.PUT("/templates/:templateId", templateHandler.UpdateTemplate)
			coachGroup.DELETE("/templates/:templateId", templateHandler.DeleteTemplate)

			// Programs
			coachGroup.POST("/programs", programHandler.CreateProgram)
			coachGroup.GET("/programs", programHandler.GetCoachPrograms)
			coachGroup.GET("/programs/:programId", programHandler.GetProgram)
			coachGroup.PUT("/programs/:programId", programHandler.UpdateProgram)
			coachGroup.POST("/programs/:programId/assign", programHandler.AssignProgram)
			coachGroup.PATCH("/assignments/:assignmentId/status", programHandler.UpdateAssignmentStatus)

			// Program schedule
			coachGroup.PUT("/programs/:programId/schedule", scheduleHandler.SetDay)
			coachGroup.GET("/programs/:programId/schedule", scheduleHandler.GetSchedule)
			coachGroup.POST("/programs/:programId/schedule/auto-fill", scheduleHandler.AutoFill)
			coachGroup.POST("/programs/:programId/schedule/:scheduleId/replace-template", scheduleHandler.ReplaceTemplate)

			// Progression rules
			coachGroup.GET("/programs/:programId/schedule/:scheduleId/rules", scheduleHandler.GetProgressionRules)
			coachGroup.PUT("/rules/:ruleId", scheduleHandler.UpdateProgressionRule)
			coachGroup.POST("/rules/:ruleId/replace-exercise", scheduleHandler.ReplaceExercise)
		}

		// --- Client Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/assignments", programHandler.GetMyAssignments)
			clientGroup.POST("/photos/upload-url", clientHandler.RequestPhotoUploadURL)
			clientGroup.POST("/photos/confirm", clientHandler.ConfirmPhotoUpload)
			clientGroup.GET("/photos", clientHandler.GetMyPhotos)
		}

		// Photo viewing is shared: owners and their coach both resolve
		// through the same download endpoint.
		protected.GET("/photos/:photoId/download-url", clientHandler.GetPhotoDownloadURL)

		// --- Workout day (start-from-progress) ---
		workoutDayGroup := protected.Group("/workout-day")
		{
			workoutDayGroup.POST("/start", workoutDayHandler.StartWorkoutDay)
			workoutDayGroup.POST("/log-set", workoutDayHandler.LogSet)
			workoutDayGroup.POST("/complete", workoutDayHandler.CompleteWorkoutDay)
		}
	}
}
