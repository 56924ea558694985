package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jagatstore/jagat-backend/internal/model"
	"github.com/jagatstore/jagat-backend/internal/repository"
)

// EngagementHandler serves the newsletter and contact-form endpoints.
type EngagementHandler struct {
	Newsletter *repository.NewsletterRepo
	Contacts   *repository.ContactRepo
	Log        *zap.Logger
}

func NewEngagementHandler(n *repository.NewsletterRepo, c *repository.ContactRepo, log *zap.Logger) *EngagementHandler {
	return &EngagementHandler{Newsletter: n, Contacts: c, Log: log}
}

type newsletterReq struct {
	Email string `json:"email"`
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Subscribe adds an email to the newsletter list, once.
func (h *EngagementHandler) Subscribe(c echo.Context) error {
	var req newsletterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	}
	if !emailPattern.MatchString(strings.ToLower(req.Email)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	}
	if _, exists := h.Newsletter.FindByEmail(req.Email); exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already subscribed"})
	}

	sub, err := h.Newsletter.Create(model.Subscription{Email: req.Email})
	if err != nil {
		h.Log.Error("subscription not persisted", zap.String("email", sub.Email), zap.Error(err))
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Email subscribed successfully",
		"id":      sub.ID,
	})
}

// Contact records a contact-form message.
func (h *EngagementHandler) Contact(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "All fields are required"})
	}
	if !emailPattern.MatchString(strings.ToLower(req.Email)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email format"})
	}

	msg, err := h.Contacts.Create(model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.Log.Error("contact message not persisted", zap.String("email", req.Email), zap.Error(err))
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Message sent successfully",
		"id":      msg.ID,
	})
}
