package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irfanAbir1231/rokto-sheba/config"
	"github.com/irfanAbir1231/rokto-sheba/middleware"
	"github.com/irfanAbir1231/rokto-sheba/models"
	"github.com/irfanAbir1231/rokto-sheba/utils"
)

type ProfileController struct {
	users *mongo.Collection
}

func NewProfileController() *ProfileController {
	return &ProfileController{
		users: config.GetCollection(config.UserCollection()),
	}
}

// requiredProfileFields is the full field set; only a submission carrying
// all of these may mark a profile complete.
var requiredProfileFields = []string{"firstName", "lastName", "phone", "address", "bloodGroup", "dob"}

// reportUploadFields maps the optional report attachments to their stored
// slot names.
var reportUploadFields = map[string]string{
	"antigenReport":    "reports.antigen",
	"serologyReport":   "reports.serology",
	"antibodyReport":   "reports.antibody",
	"bloodCountReport": "reports.bloodCount",
}

// CheckProfile handles GET /check-profile: is the caller's profile
// complete, plus a minimal summary.
func (pc *ProfileController) CheckProfile(c echo.Context) error {
	ctx := c.Request().Context()
	clerkID := c.Get(middleware.ContextKeyClerkID).(string)

	var user models.User
	err := pc.users.FindOne(ctx, bson.M{"clerkID": clerkID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"message":   "Profile not found",
				"isUpdated": false,
			})
		}
		log.Printf("Profile verification failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"isUpdated": user.IsUpdated,
		"profile": map[string]string{
			"firstName":  user.FirstName,
			"lastName":   user.LastName,
			"bloodGroup": user.BloodGroup,
		},
	})
}

// GetProfile handles GET /profile?clerkID=...
func (pc *ProfileController) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	clerkID := c.QueryParam("clerkID")
	if clerkID == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Clerk ID is required",
		})
	}

	var user models.User
	err := pc.users.FindOne(ctx, bson.M{"clerkID": clerkID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"success": false,
				"message": "User not found",
			})
		}
		log.Printf("Error fetching profile: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"firstName":  user.FirstName,
		"lastName":   user.LastName,
		"phone":      user.Phone,
		"bloodGroup": user.BloodGroup,
		"dob":        user.DOB,
		"address":    user.Address,
		"isUpdated":  user.IsUpdated,
	})
}

// UpdateProfile handles POST /profile-update: an idempotent upsert keyed
// by the caller's subject id. Because this endpoint demands the full
// required field set, it is the only place isUpdated flips to true.
func (pc *ProfileController) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	clerkID := c.Get(middleware.ContextKeyClerkID).(string)
	claims, _ := c.Get(middleware.ContextKeyClaims).(*middleware.AuthClaims)

	fields := map[string]string{
		"firstName":  c.FormValue("firstName"),
		"lastName":   c.FormValue("lastName"),
		"phone":      c.FormValue("phone"),
		"address":    c.FormValue("address"),
		"bloodGroup": c.FormValue("bloodGroup"),
		"dob":        c.FormValue("dob"),
	}
	var missing []string
	for _, name := range requiredProfileFields {
		if fields[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Missing required fields: " + strings.Join(missing, ", "),
		})
	}

	if !utils.IsValidPhoneNumber(fields["phone"]) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Phone must be 11 digits starting with 01",
		})
	}

	if !models.IsValidBloodGroup(fields["bloodGroup"]) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid blood group",
		})
	}

	var address models.Address
	if err := json.Unmarshal([]byte(fields["address"]), &address); err != nil ||
		address.Name == "" || len(address.Location.Coordinates) != 2 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Address must include a name and [longitude, latitude] coordinates",
		})
	}
	address.Location.Type = "Point"

	dob, ok := parseFormDate(fields["dob"])
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid date of birth",
		})
	}

	update := bson.M{
		"firstName":  fields["firstName"],
		"lastName":   fields["lastName"],
		"phone":      fields["phone"],
		"address":    address,
		"bloodGroup": fields["bloodGroup"],
		"dob":        dob,
		"isUpdated":  true,
		"updatedAt":  time.Now(),
	}
	if nid := c.FormValue("nid"); nid != "" {
		update["nid"] = nid
	}

	avatarURL, err := uploadOptional(ctx, c, "avatar", utils.FolderProfileImages)
	if err != nil {
		log.Printf("Avatar upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to upload avatar",
		})
	}
	switch {
	case avatarURL != "":
		update["imageURL"] = avatarURL
	case claims != nil && claims.ImageURL != "":
		// Fall back to the identity provider's avatar.
		update["imageURL"] = claims.ImageURL
	}

	for field, slot := range reportUploadFields {
		url, err := uploadOptional(ctx, c, field, utils.FolderMedicalReports)
		if err != nil {
			log.Printf("Report upload failed (%s): %v", field, err)
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "Failed to upload medical report",
			})
		}
		if url != "" {
			update[slot] = url
		}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	err = pc.users.FindOneAndUpdate(ctx,
		bson.M{"clerkID": clerkID},
		bson.M{
			"$set":         update,
			"$setOnInsert": bson.M{"clerkID": clerkID, "createdAt": time.Now()},
		},
		opts,
	).Decode(&user)
	if err != nil {
		log.Printf("Error upserting profile: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Internal server error",
		})
	}

	if err := utils.InvalidatePrefix(ctx, donorCachePrefix); err != nil {
		log.Printf("Failed to invalidate donor cache: %v", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    user,
	})
}
