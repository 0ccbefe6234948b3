package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksam-app/eco-todo-backend/internal/auth"
	"github.com/oksam-app/eco-todo-backend/internal/auth/domain"
)

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	firebaseUID := auth.UserUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.authService.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SyncUser syncs Firebase user data into the account mirror and
// initializes a zero-value ledger record in the real-time store.
// Called after Firebase signup or login.
func (h *Handler) SyncUser(c *gin.Context) {
	firebaseUID := auth.UserUID(c)
	email := auth.UserEmail(c)

	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body struct {
		Email       string  `json:"email,omitempty"`
		DisplayName *string `json:"display_name,omitempty"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body", "details": err.Error()})
			return
		}
	}

	// Email priority: body > token > uid-derived fallback.
	if body.Email != "" {
		email = body.Email
	} else if email == "" {
		email = firebaseUID + "@firebase.local"
	}

	user, err := h.authService.SyncUser(&domain.CreateUserRequest{
		FirebaseUID: firebaseUID,
		Email:       email,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync user", "details": err.Error()})
		return
	}

	_ = h.authService.RecordLogin(firebaseUID)

	// Seed the ledger so the leaderboard and points views never have to
	// special-case a missing record. Store downtime is non-fatal here.
	displayName := ""
	if user.DisplayName != nil {
		displayName = *user.DisplayName
	}
	if _, err := h.ledger.Load(c.Request.Context(), firebaseUID, email, displayName); err != nil {
		log.Printf("[warn] operation=sync_user uid=%s ledger init failed: %v", firebaseUID, err)
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile updates the user's display name, mirroring it into the
// real-time store so the leaderboard shows the new name.
func (h *Handler) UpdateProfile(c *gin.Context) {
	firebaseUID := auth.UserUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		DisplayName *string `json:"display_name,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.UpdateUser(firebaseUID, &domain.UpdateUserRequest{
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if err == domain.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	if req.DisplayName != nil {
		if err := h.ledger.UpdateDisplayName(c.Request.Context(), firebaseUID, *req.DisplayName); err != nil {
			log.Printf("[warn] operation=update_profile uid=%s store mirror failed: %v", firebaseUID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
