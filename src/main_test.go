package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staynearev/src/config"
	"staynearev/src/middlewares"
	"staynearev/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

type TestSuite struct {
	suite.Suite
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
}

// testIdentity stands in for AuthMiddleware so route behavior can be
// exercised without a token round trip.
func testIdentity(id uint, role types.UserRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("id", id)
		ctx.Set("role", role)
	}
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestRequiresToken() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	bookingHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/bookings/my-bookings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestCreateBookingValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testIdentity(1, types.ROLE_CUSTOMER))
	bookingHandlers(apiv1)

	s.Run("missing fields", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(`{}`))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		errMsg := gjson.Get(w.Body.String(), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})

	s.Run("start time in the past", func() {
		body := types.CreateBookingRequestBody{
			StationID: 1,
			StartTime: time.Now().Add(-time.Hour).Format(config.TIME_PARSE_FORMAT),
			VehicleInfo: types.VehicleInfo{
				VehicleType:  "sedan",
				LicensePlate: "EV-1234",
			},
		}
		rbytes, err := json.Marshal(&body)
		assert.Nil(s.T(), err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestAvailableSlotsValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testIdentity(1, types.ROLE_CUSTOMER))
	bookingHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/bookings/available-slots?date=2026-03-10", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestReviewValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testIdentity(1, types.ROLE_CUSTOMER))
	bookingHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/1/review", strings.NewReader(`{"rating": 9}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestBadBookingIDParam() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testIdentity(1, types.ROLE_CUSTOMER))
	bookingHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/bookings/abc/cancel", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestAdminGuard() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testIdentity(1, types.ROLE_CUSTOMER))
	admin := apiv1.Group("/admin")
	admin.Use(middlewares.RequireRole(types.ROLE_ADMIN))
	adminBookingHandlers(admin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/admin/bookings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 403, w.Code)
}

func (s *TestSuite) TestStationCreateValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(testIdentity(7, types.ROLE_HOST))
	stationHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/stations", strings.NewReader(`{"name": "Plaza Chargers"}`))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
