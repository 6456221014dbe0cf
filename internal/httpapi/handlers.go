package httpapi

import (
	"errors"
	"net/http"
	"time"

	"million-ears/internal/auth"
	"million-ears/internal/calls"
	"million-ears/internal/chat"
	"million-ears/internal/memories"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Calls    *calls.Service
	Memories *memories.Service
	Chat     *chat.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

type initiateCallRequest struct {
	Name             string `json:"name"`
	PhoneNumber      string `json:"phone_number"`
	Question         string `json:"question"`
	FamilyMemberName string `json:"family_member_name"`
}

// InitiateCall places an outbound call to a family member.
func (h Handlers) InitiateCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	var req initiateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	call, err := h.Calls.InitiateCall(c.Request.Context(), calls.InitiateCallRequest{
		UserID:           userID,
		Name:             req.Name,
		PhoneNumber:      req.PhoneNumber,
		Question:         req.Question,
		FamilyMemberName: req.FamilyMemberName,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, calls.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, call)
}

func (h Handlers) ListCalls(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	list, err := h.Calls.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": list})
}

func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	summary, err := h.Calls.SummaryByUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- Memories ---

func (h Handlers) CreateMemory(c *gin.Context) {
	if h.Memories == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "memories not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	var req memories.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := h.Memories.Create(c.Request.Context(), userID, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, memories.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h Handlers) ListMemories(c *gin.Context) {
	if h.Memories == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "memories not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	list, err := h.Memories.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "memory listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"memories": list})
}

func (h Handlers) UpdateMemory(c *gin.Context) {
	if h.Memories == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "memories not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	id := c.Param("id")
	var req memories.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	m, err := h.Memories.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		c.AbortWithStatusJSON(memoryErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func memoryErrorStatus(err error) int {
	switch {
	case errors.Is(err, memories.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, memories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memories.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// --- Chat ---

type createThreadRequest struct {
	Title string `json:"title"`
}

func (h Handlers) CreateThread(c *gin.Context) {
	if h.Chat == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "chat not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := h.Chat.CreateThread(c.Request.Context(), userID, req.Title)
	if err != nil {
		c.AbortWithStatusJSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h Handlers) ListThreads(c *gin.Context) {
	if h.Chat == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "chat not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	list, err := h.Chat.ListThreads(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "thread listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": list})
}

func (h Handlers) GetThread(c *gin.Context) {
	if h.Chat == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "chat not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	t, err := h.Chat.GetThread(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h Handlers) ListMessages(c *gin.Context) {
	if h.Chat == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "chat not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	msgs, err := h.Chat.ListMessages(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h Handlers) SendMessage(c *gin.Context) {
	if h.Chat == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "chat not configured"})
		return
	}
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	reply, err := h.Chat.SendMessage(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		c.AbortWithStatusJSON(chatErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reply)
}

func chatErrorStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, chat.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
