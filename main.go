package main

import (
	"learnhub/config"
	"learnhub/database"
	adminRoutes "learnhub/routers/adminRoutes"
	authRoutes "learnhub/routers/authRoutes"
	contactRoutes "learnhub/routers/contactRoutes"
	courseRoutes "learnhub/routers/courseRoutes"
	enrollmentRoutes "learnhub/routers/enrollmentRoutes"
	userRoutes "learnhub/routers/userRoutes"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded thumbnails and avatars
	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupInstructorRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	contactRoutes.SetupContactRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	utils.StartSchedulers()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
