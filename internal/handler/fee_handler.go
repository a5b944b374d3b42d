package handler

import (
	"net/http"

	"bellissimo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type FeeHandler struct {
	fees *service.FeeService
}

func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// List GET /fees
func (h *FeeHandler) List(c *gin.Context) {
	list, err := h.fees.ListFees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fees": list})
}

// Get returns the fee for one unit type. GET /fees/:unit_type
func (h *FeeHandler) Get(c *gin.Context) {
	unitType := c.Param("unit_type")
	fee, err := h.fees.ComputeFee(c.Request.Context(), unitType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unit_type": unitType, "fixed_fee": fee})
}

// Put sets the fee for a unit type (admin). PUT /admin/fees/:unit_type
func (h *FeeHandler) Put(c *gin.Context) {
	var req struct {
		FixedFee *decimal.Decimal `json:"fixed_fee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fixed_fee is required", "field": "fixed_fee"})
		return
	}
	cfg, err := h.fees.SetFee(c.Request.Context(), c.Param("unit_type"), *req.FixedFee)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": cfg})
}
