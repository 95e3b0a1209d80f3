// Package query builds MongoDB queries from optional request parameters.
//
// Filters are collected as typed predicates and compiled once, so the
// translation from query string to bson is a pure function that can be
// exercised without a live database. Malformed values are dropped rather
// than rejected: absence of a usable value means "no constraint".
package query

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irfanAbir1231/rokto-sheba/models"
)

// Params reads a named request parameter, returning "" when absent.
// echo.Context.QueryParam satisfies this directly.
type Params func(name string) string

// Equals constrains a field to an exact value.
type Equals struct {
	Field string
	Value interface{}
}

// Range constrains a field to an inclusive interval. A nil bound is
// unbounded on that side.
type Range struct {
	Field string
	Min   interface{}
	Max   interface{}
}

// GeoWithin constrains a geo-indexed field to points within Radius meters
// of the center, using spherical distance.
type GeoWithin struct {
	Field  string
	Lng    float64
	Lat    float64
	Radius float64
}

// Filter is an accumulated conjunction of optional predicates plus a sort
// order. Zero value matches everything, sorted by creation time descending.
type Filter struct {
	equals []Equals
	ranges []Range
	geo    *GeoWithin

	sortBy        string
	sortOrder     int
	neededByBreak bool
}

var requestSortFields = map[string]bool{
	"createdAt":  true,
	"neededBy":   true,
	"bagsNeeded": true,
}

// ForBloodRequests builds the blood-request search filter from the
// recognized query parameters. Unrecognized or malformed values are
// ignored; the geo filter only applies when lat, lng and radius are all
// present and numeric.
func ForBloodRequests(get Params) Filter {
	f := Filter{sortBy: "createdAt", sortOrder: -1}

	if bg := get("bloodGroup"); bg != "" && models.IsValidBloodGroup(bg) {
		f.equals = append(f.equals, Equals{Field: "bloodGroup", Value: bg})
	}

	if r, ok := parseIntRange(get("minBags"), get("maxBags")); ok {
		r.Field = "bagsNeeded"
		f.ranges = append(f.ranges, r)
	}

	if r, ok := parseDateRange(get("minDate"), get("maxDate")); ok {
		r.Field = "neededBy"
		f.ranges = append(f.ranges, r)
	}

	f.geo = parseGeo("location.coordinates", get)

	if sortBy := get("sortBy"); requestSortFields[sortBy] {
		f.sortBy = sortBy
	}
	if get("sortOrder") == "asc" {
		f.sortOrder = 1
	}
	// Requests due the same day are tie-broken most-recently-created first.
	f.neededByBreak = f.sortBy == "neededBy"

	return f
}

// ForDonors builds the donor search filter: blood group and the geo trio,
// always restricted to completed profiles.
func ForDonors(get Params) Filter {
	f := Filter{
		equals:    []Equals{{Field: "isUpdated", Value: true}},
		sortBy:    "createdAt",
		sortOrder: -1,
	}

	if bg := get("bloodGroup"); bg != "" && models.IsValidBloodGroup(bg) {
		f.equals = append(f.equals, Equals{Field: "bloodGroup", Value: bg})
	}

	f.geo = parseGeo("address.location", get)

	return f
}

// OwnedBy restricts results to requests owned by the given user id.
func (f Filter) OwnedBy(owner interface{}) Filter {
	f.equals = append(f.equals, Equals{Field: "requestedBy", Value: owner})
	return f
}

// Compile renders the filter into a bson document and find options.
func (f Filter) Compile() (bson.M, *options.FindOptions) {
	query := bson.M{}

	for _, eq := range f.equals {
		query[eq.Field] = eq.Value
	}

	for _, r := range f.ranges {
		bounds := bson.M{}
		if r.Min != nil {
			bounds["$gte"] = r.Min
		}
		if r.Max != nil {
			bounds["$lte"] = r.Max
		}
		if len(bounds) > 0 {
			query[r.Field] = bounds
		}
	}

	if f.geo != nil {
		query[f.geo.Field] = bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{f.geo.Lng, f.geo.Lat},
				},
				"$maxDistance": f.geo.Radius,
			},
		}
	}

	sort := bson.D{{Key: f.sortBy, Value: f.sortOrder}}
	if f.neededByBreak {
		sort = append(sort, bson.E{Key: "createdAt", Value: -1})
	}

	return query, options.Find().SetSort(sort)
}

func parseIntRange(minStr, maxStr string) (Range, bool) {
	var r Range
	if minStr != "" {
		if min, err := strconv.Atoi(minStr); err == nil {
			r.Min = min
		}
	}
	if maxStr != "" {
		if max, err := strconv.Atoi(maxStr); err == nil {
			r.Max = max
		}
	}
	return r, r.Min != nil || r.Max != nil
}

func parseDateRange(minStr, maxStr string) (Range, bool) {
	var r Range
	if t, ok := parseDate(minStr); ok {
		r.Min = t
	}
	if t, ok := parseDate(maxStr); ok {
		r.Max = t
	}
	return r, r.Min != nil || r.Max != nil
}

// parseDate accepts RFC3339 timestamps or bare dates.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseGeo returns the radius predicate only when all three parameters are
// present and numeric; a partial trio leaves location unconstrained.
func parseGeo(field string, get Params) *GeoWithin {
	latStr, lngStr, radiusStr := get("lat"), get("lng"), get("radius")
	if latStr == "" || lngStr == "" || radiusStr == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}
	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil {
		return nil
	}
	return &GeoWithin{Field: field, Lng: lng, Lat: lat, Radius: radius}
}
