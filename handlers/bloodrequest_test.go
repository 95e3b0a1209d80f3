package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfanAbir1231/rokto-sheba/middleware"
)

func newFormContext(method, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyClerkID, "user_2abc")
	return c, rec
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyClerkID, "user_2abc")
	return c, rec
}

func validCreateForm() url.Values {
	return url.Values{
		"patientName":   {"Karim"},
		"bloodGroup":    {"O-"},
		"location":      {`{"address":"Mirpur 10, Dhaka","coordinates":[90.3654,23.8069]}`},
		"bagsNeeded":    {"2"},
		"neededBy":      {time.Now().AddDate(0, 0, 1).Format("2006-01-02")},
		"contactNumber": {"01712345678"},
	}
}

func TestCreateBloodRequestMissingFields(t *testing.T) {
	form := validCreateForm()
	form.Del("patientName")
	form.Del("bagsNeeded")

	c, rec := newFormContext(http.MethodPost, "/blood-requests", form)
	bc := &BloodRequestController{}

	require.NoError(t, bc.CreateBloodRequest(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "patientName")
	assert.Contains(t, rec.Body.String(), "bagsNeeded")
	assert.NotContains(t, rec.Body.String(), "contactNumber")
}

func TestCreateBloodRequestRejectsUnknownBloodGroup(t *testing.T) {
	form := validCreateForm()
	form.Set("bloodGroup", "Z+")

	c, rec := newFormContext(http.MethodPost, "/blood-requests", form)
	bc := &BloodRequestController{}

	require.NoError(t, bc.CreateBloodRequest(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "blood group")
}

func TestCreateBloodRequestRejectsBadLocation(t *testing.T) {
	badLocations := []string{
		`not json`,
		`{"address":"Mirpur"}`,
		`{"address":"Mirpur","coordinates":[90.36]}`,
		`{"address":"Mirpur","coordinates":[90.36,23.80,12.0]}`,
		`{"coordinates":[90.36,23.80]}`,
	}

	for _, location := range badLocations {
		form := validCreateForm()
		form.Set("location", location)

		c, rec := newFormContext(http.MethodPost, "/blood-requests", form)
		bc := &BloodRequestController{}

		require.NoError(t, bc.CreateBloodRequest(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, location)
	}
}

func TestCreateBloodRequestRejectsBadBagCount(t *testing.T) {
	for _, bags := range []string{"0", "-1", "two"} {
		form := validCreateForm()
		form.Set("bagsNeeded", bags)

		c, rec := newFormContext(http.MethodPost, "/blood-requests", form)
		bc := &BloodRequestController{}

		require.NoError(t, bc.CreateBloodRequest(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bags)
	}
}

func TestCreateBloodRequestRejectsBadDate(t *testing.T) {
	form := validCreateForm()
	form.Set("neededBy", "next tuesday")

	c, rec := newFormContext(http.MethodPost, "/blood-requests", form)
	bc := &BloodRequestController{}

	require.NoError(t, bc.CreateBloodRequest(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePendingStateUnknownID(t *testing.T) {
	c, rec := newJSONContext(http.MethodPut, "/blood-requests/not-a-hex-id", `{"isPending":false}`)
	c.SetParamNames("id")
	c.SetParamValues("not-a-hex-id")
	bc := &BloodRequestController{}

	require.NoError(t, bc.UpdatePendingState(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePendingStateRequiresFlag(t *testing.T) {
	c, rec := newJSONContext(http.MethodPut, "/blood-requests/65f1a2b3c4d5e6f7a8b9c0d1", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("65f1a2b3c4d5e6f7a8b9c0d1")
	bc := &BloodRequestController{}

	require.NoError(t, bc.UpdatePendingState(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseFormDate(t *testing.T) {
	parsed, ok := parseFormDate("2026-09-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), parsed)

	parsed, ok = parseFormDate("2026-09-01T14:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 14, parsed.Hour())

	_, ok = parseFormDate("01/09/2026")
	assert.False(t, ok)
}
