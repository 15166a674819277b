package delivery

import (
	"errors"
	"net/http"

	"lifehub-backend/internal/record/domain"
	"lifehub-backend/internal/record/usecase"

	"github.com/gin-gonic/gin"
)

// RecordHandler handles record CRUD HTTP requests
type RecordHandler struct {
	recordUsecase usecase.RecordUsecase
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(recordUsecase usecase.RecordUsecase) *RecordHandler {
	return &RecordHandler{
		recordUsecase: recordUsecase,
	}
}

// CreateRecordRequest represents the request body for creating a record
type CreateRecordRequest struct {
	Title  string          `json:"title" binding:"required"`
	Fields domain.FieldMap `json:"fields"`
}

// GetRecords returns all records of a collection
// GET /api/records/:collection
func (h *RecordHandler) GetRecords(c *gin.Context) {
	userID := c.GetString("userID")
	collection := c.Param("collection")

	records, err := h.recordUsecase.GetRecords(userID, collection)
	if err != nil {
		writeRecordError(c, err)
		return
	}
	if records == nil {
		records = []*domain.Record{}
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}

// CreateRecord creates a new record
// POST /api/records/:collection
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	userID := c.GetString("userID")
	collection := c.Param("collection")

	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.recordUsecase.CreateRecord(userID, collection, req.Title, req.Fields)
	if err != nil {
		writeRecordError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetRecordByID returns a specific record
// GET /api/records/:collection/:id
func (h *RecordHandler) GetRecordByID(c *gin.Context) {
	userID := c.GetString("userID")
	recordID := c.Param("id")

	record, err := h.recordUsecase.GetRecordByID(userID, recordID)
	if err != nil {
		writeRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// UpdateRecord updates an existing record
// PUT /api/records/:collection/:id
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	userID := c.GetString("userID")
	recordID := c.Param("id")

	var updates usecase.RecordUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.recordUsecase.UpdateRecord(userID, recordID, updates)
	if err != nil {
		writeRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteRecord deletes a record
// DELETE /api/records/:collection/:id
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	userID := c.GetString("userID")
	recordID := c.Param("id")

	if err := h.recordUsecase.DeleteRecord(userID, recordID); err != nil {
		writeRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

func writeRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, usecase.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, usecase.ErrUnknownCollection):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown collection"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
