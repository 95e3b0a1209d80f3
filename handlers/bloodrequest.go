package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/irfanAbir1231/rokto-sheba/config"
	"github.com/irfanAbir1231/rokto-sheba/middleware"
	"github.com/irfanAbir1231/rokto-sheba/models"
	"github.com/irfanAbir1231/rokto-sheba/query"
	"github.com/irfanAbir1231/rokto-sheba/utils"
)

const bloodRequestCachePrefix = "blood-requests"

type BloodRequestController struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewBloodRequestController() *BloodRequestController {
	return &BloodRequestController{
		collection: config.GetCollection(config.BloodRequestCollection()),
		users:      config.GetCollection(config.UserCollection()),
	}
}

// listFilterKeys are the parameters that shape a blood-request listing;
// they form the cache key.
var listFilterKeys = []string{
	"bloodGroup", "minBags", "maxBags", "lat", "lng", "radius",
	"minDate", "maxDate", "userId", "sortBy", "sortOrder",
}

// ListBloodRequests handles GET /blood-requests.
func (bc *BloodRequestController) ListBloodRequests(c echo.Context) error {
	ctx := c.Request().Context()

	cacheKey := utils.GenerateQueryCacheKey(bloodRequestCachePrefix, queryParamMap(c, listFilterKeys))
	var cached []models.BloodRequestListing
	if hit, err := utils.GetCached(ctx, cacheKey, &cached); err == nil && hit {
		return c.JSON(http.StatusOK, cached)
	}

	filter := query.ForBloodRequests(c.QueryParam)

	if clerkID := c.QueryParam("userId"); clerkID != "" {
		var owner models.User
		err := bc.users.FindOne(ctx, bson.M{"clerkID": clerkID}).Decode(&owner)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
			}
			log.Printf("Error resolving userId filter: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch blood requests"})
		}
		filter = filter.OwnedBy(owner.ID)
	}

	queryDoc, findOpts := filter.Compile()
	cursor, err := bc.collection.Find(ctx, queryDoc, findOpts)
	if err != nil {
		log.Printf("Error fetching blood requests: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch blood requests"})
	}
	defer cursor.Close(ctx)

	var requests []models.BloodRequest
	for cursor.Next(ctx) {
		var request models.BloodRequest
		if err := cursor.Decode(&request); err != nil {
			continue
		}
		requests = append(requests, request)
	}

	requesters, err := bc.resolveRequesters(ctx, requests)
	if err != nil {
		log.Printf("Error resolving requesters: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch blood requests"})
	}

	listings := make([]models.BloodRequestListing, 0, len(requests))
	for _, request := range requests {
		listings = append(listings, request.ListingView(requesters[request.RequestedBy]))
	}

	if err := utils.SetCached(ctx, cacheKey, listings, utils.ListingCacheTTL); err != nil {
		log.Printf("Failed to cache blood request listing: %v", err)
	}

	return c.JSON(http.StatusOK, listings)
}

// resolveRequesters batch-loads the owners referenced by a result page.
func (bc *BloodRequestController) resolveRequesters(ctx context.Context, requests []models.BloodRequest) (map[primitive.ObjectID]*models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(requests))
	seen := make(map[primitive.ObjectID]bool, len(requests))
	for _, request := range requests {
		if request.RequestedBy.IsZero() || seen[request.RequestedBy] {
			continue
		}
		seen[request.RequestedBy] = true
		ids = append(ids, request.RequestedBy)
	}
	if len(ids) == 0 {
		return map[primitive.ObjectID]*models.User{}, nil
	}

	cursor, err := bc.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requesters := make(map[primitive.ObjectID]*models.User, len(ids))
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		u := user
		requesters[user.ID] = &u
	}
	return requesters, cursor.Err()
}

// CreateBloodRequest handles POST /blood-requests. The caller must be
// authenticated and have a completed profile; anonymous requests are not
// accepted.
func (bc *BloodRequestController) CreateBloodRequest(c echo.Context) error {
	ctx := c.Request().Context()
	clerkID := c.Get(middleware.ContextKeyClerkID).(string)

	fields := map[string]string{
		"patientName":   c.FormValue("patientName"),
		"bloodGroup":    c.FormValue("bloodGroup"),
		"location":      c.FormValue("location"),
		"bagsNeeded":    c.FormValue("bagsNeeded"),
		"neededBy":      c.FormValue("neededBy"),
		"contactNumber": c.FormValue("contactNumber"),
	}
	var missing []string
	for _, name := range []string{"patientName", "bloodGroup", "location", "bagsNeeded", "neededBy", "contactNumber"} {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Missing required fields: " + strings.Join(missing, ", "),
		})
	}

	if !models.IsValidBloodGroup(fields["bloodGroup"]) {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid blood group"})
	}

	var location models.RequestLocation
	if err := json.Unmarshal([]byte(fields["location"]), &location); err != nil ||
		location.Address == "" || len(location.Coordinates) != 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Location must include an address and [longitude, latitude] coordinates",
		})
	}

	bagsNeeded, err := strconv.Atoi(fields["bagsNeeded"])
	if err != nil || bagsNeeded < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "bagsNeeded must be a positive integer"})
	}

	neededBy, ok := parseFormDate(fields["neededBy"])
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid neededBy date"})
	}

	var requester models.User
	err = bc.users.FindOne(ctx, bson.M{"clerkID": clerkID}).Decode(&requester)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Profile not found"})
		}
		log.Printf("Error loading requester profile: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	if !requester.IsUpdated {
		return c.JSON(http.StatusForbidden, map[string]string{"message": "Complete your profile before requesting blood"})
	}

	patientImageURL, err := uploadOptional(ctx, c, "patientImage", utils.FolderBloodRequests)
	if err != nil {
		log.Printf("Patient image upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to upload patient image"})
	}
	medicalReportURL, err := uploadOptional(ctx, c, "medicalReport", utils.FolderMedicalReports)
	if err != nil {
		log.Printf("Medical report upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to upload medical report"})
	}

	now := time.Now()
	request := models.BloodRequest{
		ID:             primitive.NewObjectID(),
		PatientName:    fields["patientName"],
		BloodGroup:     fields["bloodGroup"],
		Location:       location,
		BagsNeeded:     bagsNeeded,
		NeededBy:       neededBy,
		ContactNumber:  fields["contactNumber"],
		AdditionalInfo: c.FormValue("additionalInfo"),
		PatientImage:   patientImageURL,
		MedicalReport:  medicalReportURL,
		IsPending:      true,
		RequestedBy:    requester.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := bc.collection.InsertOne(ctx, request); err != nil {
		log.Printf("Error creating blood request: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	if err := utils.InvalidatePrefix(ctx, bloodRequestCachePrefix); err != nil {
		log.Printf("Failed to invalidate blood request cache: %v", err)
	}

	return c.JSON(http.StatusCreated, request)
}

// UpdatePendingState handles PUT /blood-requests/:id. Only the owner may
// toggle isPending.
func (bc *BloodRequestController) UpdatePendingState(c echo.Context) error {
	ctx := c.Request().Context()
	clerkID := c.Get(middleware.ContextKeyClerkID).(string)

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Request not found"})
	}

	var body struct {
		IsPending *bool `json:"isPending"`
	}
	if err := c.Bind(&body); err != nil || body.IsPending == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "isPending is required"})
	}

	var caller models.User
	err = bc.users.FindOne(ctx, bson.M{"clerkID": clerkID}).Decode(&caller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
		}
		log.Printf("Error loading caller profile: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}

	var request models.BloodRequest
	err = bc.collection.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Request not found"})
		}
		log.Printf("Error loading blood request: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}

	if request.RequestedBy != caller.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"message": "Unauthorized"})
	}

	_, err = bc.collection.UpdateOne(ctx, bson.M{"_id": requestID}, bson.M{
		"$set": bson.M{"isPending": *body.IsPending, "updatedAt": time.Now()},
	})
	if err != nil {
		log.Printf("Error updating blood request: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}

	err = bc.collection.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err != nil {
		log.Printf("Error reloading blood request: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}

	if err := utils.InvalidatePrefix(ctx, bloodRequestCachePrefix); err != nil {
		log.Printf("Failed to invalidate blood request cache: %v", err)
	}

	return c.JSON(http.StatusOK, request)
}

func uploadOptional(ctx context.Context, c echo.Context, field, folder string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// Absent attachment, not a failure.
		return "", nil
	}
	return utils.UploadFile(ctx, fileHeader, folder)
}

func queryParamMap(c echo.Context, keys []string) map[string]string {
	params := make(map[string]string, len(keys))
	for _, key := range keys {
		if value := c.QueryParam(key); value != "" {
			params[key] = value
		}
	}
	return params
}

func parseFormDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
