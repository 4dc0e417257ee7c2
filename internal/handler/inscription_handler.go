package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instituto-admin-api/internal/billing"
	"github.com/noah-isme/instituto-admin-api/internal/middleware"
	"github.com/noah-isme/instituto-admin-api/internal/service"
	"github.com/noah-isme/instituto-admin-api/internal/store"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

type enrollmentService interface {
	Quote(req service.QuoteRequest) (*service.Quote, error)
	Enroll(ctx context.Context, req service.EnrollRequest, staff string) (*service.EnrollResult, error)
	List(studentID int) []billing.Summary
	Summary(id int) (*billing.Summary, error)
	PayInstallment(ctx context.Context, id, number int, req service.PayInstallmentRequest, staff string) (*service.PaymentResult, error)
	Remove(ctx context.Context, id int, retract bool) (*service.RemovalResult, error)
	RecordMovement(ctx context.Context, req service.MovementRequest, staff string) (*store.CashMovement, error)
}

// InscriptionHandler exposes enrollment commands and views.
type InscriptionHandler struct {
	enrollments enrollmentService
}

// NewInscriptionHandler constructs InscriptionHandler.
func NewInscriptionHandler(enrollments enrollmentService) *InscriptionHandler {
	return &InscriptionHandler{enrollments: enrollments}
}

// Quote godoc
// @Summary Price an enrollment
// @Description Final total and installment preview without storing anything
// @Tags Inscriptions
// @Accept json
// @Produce json
// @Param payload body service.QuoteRequest true "Quote payload"
// @Success 200 {object} service.Quote
// @Failure 400 {object} response.Ack
// @Failure 404 {object} response.Ack
// @Router /store/quote [post]
func (h *InscriptionHandler) Quote(c *gin.Context) {
	var req service.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quote payload"))
		return
	}
	quote, err := h.enrollments.Quote(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, quote)
}

// Create godoc
// @Summary Enroll a student
// @Description Creates the inscription and, when formaPago is given, its cash movement
// @Tags Inscriptions
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} service.EnrollResult
// @Failure 400 {object} response.Ack
// @Failure 404 {object} response.Ack
// @Router /store/inscriptions [post]
func (h *InscriptionHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid inscription payload"))
		return
	}
	res, err := h.enrollments.Enroll(c.Request.Context(), req, staffLabel(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// List godoc
// @Summary List inscriptions
// @Tags Inscriptions
// @Produce json
// @Param studentId query int false "Only this student's inscriptions"
// @Success 200 {array} billing.Summary
// @Router /store/inscriptions [get]
func (h *InscriptionHandler) List(c *gin.Context) {
	studentID := 0
	if raw := c.Query("studentId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId inválido"))
			return
		}
		studentID = id
	}
	response.JSON(c, http.StatusOK, h.enrollments.List(studentID))
}

// Get godoc
// @Summary Inscription payment summary
// @Tags Inscriptions
// @Produce json
// @Param id path int true "Inscription ID"
// @Success 200 {object} billing.Summary
// @Failure 404 {object} response.Ack
// @Router /store/inscriptions/{id} [get]
func (h *InscriptionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sum, err := h.enrollments.Summary(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sum)
}

// PayInstallment godoc
// @Summary Pay one installment
// @Tags Inscriptions
// @Accept json
// @Produce json
// @Param id path int true "Inscription ID"
// @Param number path int true "Installment number"
// @Param payload body service.PayInstallmentRequest false "Register payment method"
// @Success 200 {object} service.PaymentResult
// @Failure 404 {object} response.Ack
// @Failure 409 {object} response.Ack
// @Router /store/inscriptions/{id}/installments/{number}/pay [post]
func (h *InscriptionHandler) PayInstallment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	number, ok := pathID(c, "number")
	if !ok {
		return
	}
	var req service.PayInstallmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
			return
		}
	}
	res, err := h.enrollments.PayInstallment(c.Request.Context(), id, number, req, staffLabel(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Delete godoc
// @Summary Delete inscription
// @Description Cash movements are kept unless retractMovements=true
// @Tags Inscriptions
// @Produce json
// @Param id path int true "Inscription ID"
// @Param retractMovements query bool false "Also remove the linked cash movements"
// @Success 200 {object} service.RemovalResult
// @Failure 404 {object} response.Ack
// @Router /store/inscriptions/{id} [delete]
func (h *InscriptionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	retract, err := strconv.ParseBool(c.DefaultQuery("retractMovements", "false"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "retractMovements inválido"))
		return
	}
	res, err := h.enrollments.Remove(c.Request.Context(), id, retract)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// CreateMovement godoc
// @Summary Record a cash movement
// @Tags Caja
// @Accept json
// @Produce json
// @Param payload body service.MovementRequest true "Movement payload"
// @Success 201 {object} store.CashMovement
// @Failure 400 {object} response.Ack
// @Failure 404 {object} response.Ack
// @Router /store/caja [post]
func (h *InscriptionHandler) CreateMovement(c *gin.Context) {
	var req service.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid movement payload"))
		return
	}
	mv, err := h.enrollments.RecordMovement(c.Request.Context(), req, staffLabel(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mv)
}

// staffLabel is the signed-in user's name, empty for anonymous requests.
func staffLabel(c *gin.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.FullName
	}
	return ""
}
