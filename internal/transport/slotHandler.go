package transport

import (
	"net/http"
	"strconv"

	"github.com/parkgolf/slot-service/internal/entity"
	"github.com/parkgolf/slot-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SlotHandler struct {
	slotService     service.SlotService
	capacityService service.CapacityService
}

func NewSlotHandler(slotService service.SlotService, capacityService service.CapacityService) *SlotHandler {
	return &SlotHandler{slotService: slotService, capacityService: capacityService}
}

// AdjustSlotRequest is the body for direct book/release calls.
type AdjustSlotRequest struct {
	PlayerCount int `json:"player_count" binding:"required,min=1,max=50"`
}

type SetStatusRequest struct {
	Status entity.SlotStatus `json:"status" binding:"required"`
}

func (h *SlotHandler) GenerateSlots(c *gin.Context) {
	var req service.GenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.slotService.GenerateSlots(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *SlotHandler) ListSlots(c *gin.Context) {
	gameID, err := strconv.ParseInt(c.Query("game_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game_id"})
		return
	}

	req := service.ListSlotsRequest{
		GameID:        gameID,
		DateFrom:      c.Query("date_from"),
		DateTo:        c.Query("date_to"),
		AvailableOnly: c.Query("available_only") == "true",
	}

	slots, err := h.slotService.ListSlots(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, slots)
}

func (h *SlotHandler) GetSlot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	slot, err := h.slotService.GetSlot(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) BookSlot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	var req AdjustSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.capacityService.Book(c.Request.Context(), id, req.PlayerCount)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) ReleaseSlot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	var req AdjustSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.capacityService.ReleaseDirect(c.Request.Context(), id, req.PlayerCount)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, slot)
}

func (h *SlotHandler) SetSlotStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.slotService.SetSlotStatus(c.Request.Context(), id, req.Status); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}
