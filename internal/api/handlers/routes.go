package handlers

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app fiber.Router, platform *PlatformHandler, post *PostHandler, upload *UploadHandler, schedule *ScheduleHandler) {
	api := app.Group("/api")

	api.Get("/platforms", platform.ListPlatforms)
	api.Get("/character_limits", platform.CharacterLimits)

	api.Post("/post", post.CreatePost)
	api.Post("/post-with-media", post.CreatePostWithMedia)
	api.Post("/upload", upload.Upload)

	api.Post("/schedule", schedule.SchedulePost)
	api.Get("/scheduled-posts", schedule.ListScheduledPosts)
	api.Delete("/delete-scheduled-post/:id", schedule.DeleteScheduledPost)
	api.Post("/scheduled-posts/:id/execute", schedule.ExecutePost)
	api.Get("/scheduled-posts/:id/history", schedule.PostHistory)

	// debug
	api.Get("/debug/force-check-scheduled", schedule.ForceCheckScheduled)
	api.Post("/debug/set-post-now/:id", schedule.SetPostNow)
}
