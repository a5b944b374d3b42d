package handler

import (
	"net/http"

	"bellissimo/internal/models"
	"bellissimo/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentMethodHandler struct {
	registry *service.PaymentMethodRegistry
}

func NewPaymentMethodHandler(registry *service.PaymentMethodRegistry) *PaymentMethodHandler {
	return &PaymentMethodHandler{registry: registry}
}

// List returns active methods with their fields. GET /payment-methods
func (h *PaymentMethodHandler) List(c *gin.Context) {
	list, err := h.registry.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": list})
}

// Fields returns the field configuration a payment form should render. GET /payment-methods/:id/fields
func (h *PaymentMethodHandler) Fields(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cfg, err := h.registry.GetFieldConfiguration(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type fieldRequest struct {
	FieldName         string `json:"field_name" binding:"required"`
	Label             string `json:"label"`
	Placeholder       string `json:"placeholder"`
	Required          bool   `json:"required"`
	ValidationPattern string `json:"validation_pattern"`
	ValidationMessage string `json:"validation_message"`
	Position          int    `json:"position"`
}

func toFieldConfigs(in []fieldRequest) []models.PaymentFieldConfig {
	out := make([]models.PaymentFieldConfig, len(in))
	for i, f := range in {
		out[i] = models.PaymentFieldConfig{
			FieldName:         f.FieldName,
			Label:             f.Label,
			Placeholder:       f.Placeholder,
			Required:          f.Required,
			ValidationPattern: f.ValidationPattern,
			ValidationMessage: f.ValidationMessage,
			Position:          f.Position,
		}
	}
	return out
}

// Create adds a method (admin). POST /admin/payment-methods
func (h *PaymentMethodHandler) Create(c *gin.Context) {
	var req struct {
		Code        string         `json:"code" binding:"required"`
		Name        string         `json:"name" binding:"required"`
		Description string         `json:"description"`
		LogoURL     string         `json:"logo_url"`
		IsActive    *bool          `json:"is_active"`
		Fields      []fieldRequest `json:"fields" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := &models.PaymentMethod{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		IsActive:    req.IsActive == nil || *req.IsActive,
		Fields:      toFieldConfigs(req.Fields),
	}
	if err := h.registry.CreateMethod(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_method": m})
}

// ReplaceFields swaps a method's field set (admin). PUT /admin/payment-methods/:id/fields
func (h *PaymentMethodHandler) ReplaceFields(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Fields []fieldRequest `json:"fields" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.registry.ReplaceFields(c.Request.Context(), id, toFieldConfigs(req.Fields))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_method": m})
}

// SetActive enables or disables a method (admin). PATCH /admin/payment-methods/:id
func (h *PaymentMethodHandler) SetActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required", "field": "is_active"})
		return
	}
	if err := h.registry.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": *req.IsActive})
}
