package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/irfanAbir1231/rokto-sheba/config"
	"github.com/irfanAbir1231/rokto-sheba/middleware"
	"github.com/irfanAbir1231/rokto-sheba/models"
)

type ReviewController struct {
	collection    *mongo.Collection
	users         *mongo.Collection
	bloodRequests *mongo.Collection
}

func NewReviewController() *ReviewController {
	return &ReviewController{
		collection:    config.GetCollection(config.ReviewCollection()),
		users:         config.GetCollection(config.UserCollection()),
		bloodRequests: config.GetCollection(config.BloodRequestCollection()),
	}
}

// CreateReview handles POST /reviews.
func (rc *ReviewController) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	clerkID := c.Get(middleware.ContextKeyClerkID).(string)

	var req struct {
		BloodRequestID string `json:"bloodRequestId"`
		Rating         int    `json:"rating"`
		Comment        string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Rating must be between 1 and 5"})
	}

	requestID, err := primitive.ObjectIDFromHex(req.BloodRequestID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Request not found"})
	}

	var user models.User
	err = rc.users.FindOne(ctx, bson.M{"clerkID": clerkID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		log.Printf("Error loading reviewer profile: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}

	count, err := rc.bloodRequests.CountDocuments(ctx, bson.M{"_id": requestID})
	if err != nil {
		log.Printf("Error checking blood request: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}
	if count == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Request not found"})
	}

	now := time.Now()
	review := models.Review{
		ID:           primitive.NewObjectID(),
		User:         user.ID,
		BloodRequest: requestID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := rc.collection.InsertOne(ctx, review); err != nil {
		log.Printf("Error creating review: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}

	return c.JSON(http.StatusCreated, review)
}
