package transport

import (
	"errors"
	"net/http"

	"github.com/parkgolf/slot-service/internal/entity"
	"github.com/parkgolf/slot-service/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(slotHandler *SlotHandler, scheduleHandler *ScheduleHandler, health gin.HandlerFunc) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// API routes
	api := router.Group("/api/v1")
	{
		slots := api.Group("/slots")
		{
			slots.POST("/generate", slotHandler.GenerateSlots)
			slots.GET("", slotHandler.ListSlots)
			slots.GET("/:id", slotHandler.GetSlot)
			slots.POST("/:id/book", slotHandler.BookSlot)
			slots.POST("/:id/release", slotHandler.ReleaseSlot)
			slots.PATCH("/:id/status", slotHandler.SetSlotStatus)
		}

		schedules := api.Group("/schedules")
		{
			schedules.POST("", scheduleHandler.CreateSchedule)
			schedules.GET("/:id", scheduleHandler.GetSchedule)
			schedules.PATCH("/:id", scheduleHandler.UpdateSchedule)
			schedules.DELETE("/:id", scheduleHandler.DeleteSchedule)
		}

		api.GET("/games/:game_id/schedules", scheduleHandler.GetGameSchedules)
	}

	// Health check
	router.GET("/health", health)

	return router
}

// statusForError maps domain errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, entity.ErrSlotNotFound),
		errors.Is(err, entity.ErrScheduleNotFound),
		errors.Is(err, entity.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrCapacityExceeded),
		errors.Is(err, entity.ErrSlotUnavailable),
		errors.Is(err, entity.ErrScheduleConflict),
		errors.Is(err, entity.ErrNoScheduleDefined),
		errors.Is(err, entity.ErrSlotAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidDateRange),
		errors.Is(err, entity.ErrInvalidTimeWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
