package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/irfanAbir1231/rokto-sheba/handlers"
	"github.com/irfanAbir1231/rokto-sheba/middleware"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handlers.HealthCheck)

	bloodRequests := handlers.NewBloodRequestController()
	donors := handlers.NewDonorController()
	profiles := handlers.NewProfileController()
	reviews := handlers.NewReviewController()

	auth := middleware.Auth()

	e.GET("/blood-requests", bloodRequests.ListBloodRequests)
	e.POST("/blood-requests", bloodRequests.CreateBloodRequest, auth)
	e.PUT("/blood-requests/:id", bloodRequests.UpdatePendingState, auth)

	e.GET("/donors", donors.ListDonors)

	e.GET("/check-profile", profiles.CheckProfile, auth)
	e.GET("/profile", profiles.GetProfile)
	e.POST("/profile-update", profiles.UpdateProfile, auth)

	e.POST("/reviews", reviews.CreateReview, auth)
}
