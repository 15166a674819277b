package delivery

import (
	"errors"
	"net/http"

	"lifehub-backend/internal/sync/domain"
	"lifehub-backend/internal/sync/usecase"
	"lifehub-backend/pkg/notion"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// SyncHandler handles recovery and resolution HTTP requests
type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
	oauthConfig *oauth2.Config
}

// NewSyncHandler creates a new SyncHandler. oauthConfig may be nil when the
// deployment only supports pasting internal integration tokens.
func NewSyncHandler(syncUsecase usecase.SyncUsecase, oauthConfig *oauth2.Config) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
		oauthConfig: oauthConfig,
	}
}

// ConnectRequest represents the request body for storing a workspace token
type ConnectRequest struct {
	AccessToken   string `json:"access_token" binding:"required"`
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
}

// LinkCollectionRequest represents the request body for linking a collection
type LinkCollectionRequest struct {
	DatabaseID string `json:"database_id" binding:"required"`
}

// StartRecoveryRequest represents the request body for starting a recovery
type StartRecoveryRequest struct {
	AutoResolve bool `json:"auto_resolve"`
}

// SubmitResolutionsRequest echoes the conflict snapshot from a prior recovery
// alongside the caller's choices. The server holds nothing between the two
// calls.
type SubmitResolutionsRequest struct {
	Conflicts []domain.Conflict         `json:"conflicts" binding:"required"`
	Choices   []domain.ResolutionChoice `json:"choices" binding:"required"`
}

// Connect stores the user's workspace integration token
// POST /api/sync/connect
func (h *SyncHandler) Connect(c *gin.Context) {
	userID := c.GetString("userID")

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.syncUsecase.Connect(userID, &domain.WorkspaceConnection{
		AccessToken:   req.AccessToken,
		WorkspaceID:   req.WorkspaceID,
		WorkspaceName: req.WorkspaceName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace connected"})
}

// OAuthExchangeRequest represents the request body for finishing the OAuth flow
type OAuthExchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

// OAuthExchange trades an authorization code for a workspace token and
// stores the connection
// POST /api/sync/oauth
func (h *SyncHandler) OAuthExchange(c *gin.Context) {
	userID := c.GetString("userID")

	if h.oauthConfig == nil || h.oauthConfig.ClientID == "" {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "OAuth is not configured"})
		return
	}

	var req OAuthExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := notion.ExchangeCode(c.Request.Context(), h.oauthConfig, req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "OAuth exchange failed: " + err.Error()})
		return
	}

	conn := &domain.WorkspaceConnection{AccessToken: token.AccessToken}
	if id, ok := token.Extra("workspace_id").(string); ok {
		conn.WorkspaceID = id
	}
	if name, ok := token.Extra("workspace_name").(string); ok {
		conn.WorkspaceName = name
	}
	if err := h.syncUsecase.Connect(userID, conn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace connected", "workspace_name": conn.WorkspaceName})
}

// GetCollections lists every collection and its link state
// GET /api/sync/collections
func (h *SyncHandler) GetCollections(c *gin.Context) {
	userID := c.GetString("userID")

	infos, err := h.syncUsecase.ListCollections(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": infos})
}

// LinkCollection attaches a Notion database to a collection
// POST /api/sync/collections/:collection/link
func (h *SyncHandler) LinkCollection(c *gin.Context) {
	userID := c.GetString("userID")
	collection := c.Param("collection")

	var req LinkCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.syncUsecase.LinkCollection(userID, collection, req.DatabaseID); err != nil {
		writeSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection linked"})
}

// GetStatuses returns the sync status ledger of a collection
// GET /api/sync/status/:collection
func (h *SyncHandler) GetStatuses(c *gin.Context) {
	userID := c.GetString("userID")
	collection := c.Param("collection")

	statuses, err := h.syncUsecase.ListStatuses(userID, collection)
	if err != nil {
		writeSyncError(c, err)
		return
	}
	if statuses == nil {
		statuses = []*domain.SyncStatus{}
	}

	c.JSON(http.StatusOK, gin.H{
		"statuses": statuses,
		"total":    len(statuses),
	})
}

// StartRecovery runs recovery for one collection
// POST /api/sync/recover/:collection
func (h *SyncHandler) StartRecovery(c *gin.Context) {
	userID := c.GetString("userID")
	collection := c.Param("collection")

	// Body is optional; auto_resolve defaults to false.
	var req StartRecoveryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	run, err := h.syncUsecase.StartRecovery(c.Request.Context(), userID, collection, req.AutoResolve)
	if err != nil {
		writeSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// RecoverAll runs recovery sequentially over every collection
// POST /api/sync/recover
func (h *SyncHandler) RecoverAll(c *gin.Context) {
	userID := c.GetString("userID")

	var req StartRecoveryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.syncUsecase.RecoverAll(c.Request.Context(), userID, req.AutoResolve)
	if err != nil && !errors.Is(err, domain.ErrAuthExpired) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
		return
	}
	if errors.Is(err, domain.ErrAuthExpired) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Workspace reconnect required", "result": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitResolutions applies the caller's conflict decisions
// POST /api/sync/resolutions/:collection
func (h *SyncHandler) SubmitResolutions(c *gin.Context) {
	userID := c.GetString("userID")
	collection := c.Param("collection")

	var req SubmitResolutionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.syncUsecase.SubmitResolutions(c.Request.Context(), userID, collection, req.Conflicts, req.Choices)
	if err != nil {
		writeSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func writeSyncError(c *gin.Context, err error) {
	var incomplete *domain.IncompleteResolutionError
	switch {
	case errors.Is(err, usecase.ErrUnknownCollection):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown collection"})
	case errors.Is(err, usecase.ErrConflictCollectionMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAuthExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Workspace reconnect required"})
	case errors.Is(err, domain.ErrExternalNotFound):
		c.JSON(http.StatusConflict, gin.H{"error": "Collection has no linked Notion database"})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": incomplete.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
