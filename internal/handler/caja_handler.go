package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instituto-admin-api/internal/service"
	"github.com/noah-isme/instituto-admin-api/internal/store"
	"github.com/noah-isme/instituto-admin-api/pkg/export"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

type cashRegisterService interface {
	ParseDay(value string) (time.Time, error)
	Daily(day time.Time, method store.PaymentMethod) (*service.DailyRegister, error)
	Export(day time.Time, method store.PaymentMethod, format export.Format) (*service.Report, error)
}

// CajaHandler serves the daily cash register.
type CajaHandler struct {
	register cashRegisterService
}

// NewCajaHandler constructs CajaHandler.
func NewCajaHandler(register cashRegisterService) *CajaHandler {
	return &CajaHandler{register: register}
}

// Daily godoc
// @Summary Daily cash register
// @Description Movements of one calendar day with totals per payment method
// @Tags Caja
// @Produce json
// @Param fecha query string false "Day as YYYY-MM-DD, today when empty"
// @Param formaPago query string false "Efectivo, Transferencia or Tarjeta"
// @Success 200 {object} service.DailyRegister
// @Failure 400 {object} response.Ack
// @Router /store/caja/daily [get]
func (h *CajaHandler) Daily(c *gin.Context) {
	day, err := h.register.ParseDay(c.Query("fecha"))
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.register.Daily(day, store.PaymentMethod(c.Query("formaPago")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Export godoc
// @Summary Export daily cash register
// @Tags Caja
// @Produce text/csv
// @Produce application/pdf
// @Param fecha query string false "Day as YYYY-MM-DD, today when empty"
// @Param formaPago query string false "Efectivo, Transferencia or Tarjeta"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Ack
// @Router /store/caja/daily/export [get]
func (h *CajaHandler) Export(c *gin.Context) {
	day, err := h.register.ParseDay(c.Query("fecha"))
	if err != nil {
		response.Error(c, err)
		return
	}
	format := export.Format(strings.ToLower(c.DefaultQuery("format", string(export.FormatCSV))))
	report, err := h.register.Export(day, store.PaymentMethod(c.Query("formaPago")), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
