package main

import (
	"errors"
	"log"
	"net/http"

	"staynearev/src/common"
	"staynearev/src/db"
	"staynearev/src/models"
	"staynearev/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func publicStationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/stations", func(ctx *gin.Context) {
			var stations []models.Station
			db := db.GetDb()
			err := db.
				Model(&models.Station{}).
				Order("created_at DESC").
				Find(&stations).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stations, "count": len(stations)})
		}).
		GET("/stations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var station models.Station
			db := db.GetDb()
			if err := db.
				Model(&models.Station{}).
				Where(&models.Station{ID: params.ID}).
				First(&station).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": station})
		}).
		GET("/stations/:id/reviews", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var reviews []struct {
				Rating    uint8   `json:"rating"`
				Review    *string `json:"review,omitempty"`
				UserID    uint    `json:"user_id"`
				CreatedAt string  `json:"created_at"`
			}
			db := db.GetDb()
			err := db.
				Model(&models.Booking{}).
				Where("station_id = ?", params.ID).
				Where("rating IS NOT NULL").
				Select("rating", "review", "user_id", "updated_at AS created_at").
				Order("updated_at DESC").
				Scan(&reviews).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reviews, "count": len(reviews)})
		})
	return g
}

func stationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/stations", func(ctx *gin.Context) {
			var body types.CreateStationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			hostId := ctx.GetUint("id")
			station := models.Station{
				Name:         body.Name,
				Slug:         slug.Make(body.Name),
				Location:     body.Location,
				Description:  body.Description,
				PricePerUnit: body.PricePerUnit,
				Amenities:    body.Amenities,
				Images:       body.Images,
				HostID:       hostId,
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&station).Error
			})
			if err != nil {
				log.Printf("Error creating station: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": station})
		}).
		PUT("/stations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateStationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var station models.Station
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Station{}).
					Where(&models.Station{ID: params.ID}).
					First(&station).
					Error; err != nil {
					return err
				}
				if !common.Allowed(actorFrom(ctx), common.ActionManageStation, 0, station.HostID) {
					return types.NewAPIError(types.ErrAuthorization, "not allowed to manage this station")
				}
				updates := models.Station{
					Name:         body.Name,
					Location:     body.Location,
					Description:  body.Description,
					PricePerUnit: body.PricePerUnit,
					Amenities:    body.Amenities,
					Images:       body.Images,
				}
				if body.Name != "" {
					updates.Slug = slug.Make(body.Name)
				}
				return tx.
					Model(&models.Station{}).
					Where(&models.Station{ID: params.ID}).
					Updates(&updates).
					Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/stations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var station models.Station
				if err := tx.
					Model(&models.Station{}).
					Where(&models.Station{ID: params.ID}).
					First(&station).
					Error; err != nil {
					return err
				}
				if !common.Allowed(actorFrom(ctx), common.ActionManageStation, 0, station.HostID) {
					return types.NewAPIError(types.ErrAuthorization, "not allowed to manage this station")
				}
				var open int64
				if err := tx.
					Model(&models.Booking{}).
					Where("station_id = ?", params.ID).
					Where("status IN ?", []types.BookingStatus{
						types.BOOKING_PENDING,
						types.BOOKING_CONFIRMED,
						types.BOOKING_ACTIVE,
					}).
					Count(&open).
					Error; err != nil {
					return err
				}
				if open > 0 {
					return types.NewAPIError(types.ErrConflict, "station has open bookings")
				}
				return tx.Delete(&station).Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "station not found"})
					return
				}
				respondError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/stations/mine", func(ctx *gin.Context) {
			hostId := ctx.GetUint("id")
			var stations []models.Station
			db := db.GetDb()
			err := db.
				Model(&models.Station{}).
				Where("host_id = ?", hostId).
				Order("created_at DESC").
				Find(&stations).
				Error
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stations, "count": len(stations)})
		})
	return g
}
