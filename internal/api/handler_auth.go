package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/auth"
	"carslink-backend/internal/model"
	"carslink-backend/internal/mw"
)

type signupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required,min=8"`
}

// Signup handles POST /api/auth/create-profile.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	acct := &model.Account{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	}
	if err := h.store.CreateAccount(c.Request.Context(), acct); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": acct.ID})
}

type checkEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CheckEmail handles POST /api/auth/check-email. The signup form asks before
// submitting, so a taken address is caught before the password round-trip.
func (h *Handler) CheckEmail(c *gin.Context) {
	var req checkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.store.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. Attempts are throttled per email so a
// single address cannot be brute-forced from many IPs.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.logins.Allow(strings.ToLower(req.Email)) {
		h.fail(c, auth.NewError(auth.KindRateLimited, nil))
		return
	}

	acct, err := h.store.GetAccountByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !auth.VerifyPassword(req.Password, acct.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !acct.EmailConfirmed {
		h.fail(c, auth.NewError(auth.KindEmailUnconfirmed, nil))
		return
	}

	token, expiresAt, err := auth.GenerateAccessToken(h.cfg.Auth, acct.ID, acct.Role)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_at":   expiresAt,
		"account": gin.H{
			"id":         acct.ID,
			"first_name": acct.FirstName,
			"last_name":  acct.LastName,
			"email":      acct.Email,
		},
	})
}

type confirmEmailRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// ConfirmEmail handles POST /api/auth/confirm-email.
func (h *Handler) ConfirmEmail(c *gin.Context) {
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.ConfirmEmail(c.Request.Context(), req.AccountID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfile handles GET /api/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	acct, err := h.store.GetAccount(c.Request.Context(), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              acct.ID,
		"first_name":      acct.FirstName,
		"last_name":       acct.LastName,
		"email":           acct.Email,
		"phone":           acct.Phone,
		"email_confirmed": acct.EmailConfirmed,
	})
}

type updateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

// UpdateProfile handles PUT /api/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct := &model.Account{
		ID:        mw.AccountID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}
	if err := h.store.UpdateAccount(c.Request.Context(), acct); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteProfile handles DELETE /api/profile (soft delete).
func (h *Handler) DeleteProfile(c *gin.Context) {
	if err := h.store.SoftDeleteAccount(c.Request.Context(), mw.AccountID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
