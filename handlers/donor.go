package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/irfanAbir1231/rokto-sheba/config"
	"github.com/irfanAbir1231/rokto-sheba/models"
	"github.com/irfanAbir1231/rokto-sheba/query"
	"github.com/irfanAbir1231/rokto-sheba/utils"
)

const donorCachePrefix = "donors"

type DonorController struct {
	users *mongo.Collection
}

func NewDonorController() *DonorController {
	return &DonorController{
		users: config.GetCollection(config.UserCollection()),
	}
}

var donorFilterKeys = []string{"bloodGroup", "lat", "lng", "radius"}

// ListDonors handles GET /donors. Only completed profiles are eligible,
// whatever the caller filters on.
func (dc *DonorController) ListDonors(c echo.Context) error {
	ctx := c.Request().Context()

	cacheKey := utils.GenerateQueryCacheKey(donorCachePrefix, queryParamMap(c, donorFilterKeys))
	var cached []models.DonorResult
	if hit, err := utils.GetCached(ctx, cacheKey, &cached); err == nil && hit {
		return c.JSON(http.StatusOK, cached)
	}

	queryDoc, findOpts := query.ForDonors(c.QueryParam).Compile()
	cursor, err := dc.users.Find(ctx, queryDoc, findOpts)
	if err != nil {
		log.Printf("Error fetching donors: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch donors"})
	}
	defer cursor.Close(ctx)

	donors := make([]models.DonorResult, 0)
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		donors = append(donors, user.DonorView())
	}

	if err := utils.SetCached(ctx, cacheKey, donors, utils.ListingCacheTTL); err != nil {
		log.Printf("Failed to cache donor listing: %v", err)
	}

	return c.JSON(http.StatusOK, donors)
}
