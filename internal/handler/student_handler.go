package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instituto-admin-api/internal/models"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, payload models.StudentPayload) (*models.Student, error)
	Update(ctx context.Context, id string, payload models.StudentPayload) (*models.Student, error)
	Delete(ctx context.Context, id string) error
}

// StudentHandler exposes the alumnos endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Alumnos
// @Produce json
// @Success 200 {array} models.Student
// @Failure 500 {object} response.Ack
// @Router /alumnos [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Create godoc
// @Summary Create student
// @Tags Alumnos
// @Accept json
// @Produce json
// @Param payload body models.StudentPayload true "Student payload"
// @Success 201 {object} models.Student
// @Failure 400 {object} response.Ack
// @Router /alumnos [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var payload models.StudentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Replace student
// @Description Every mutable field is replaced; omitted fields become empty
// @Tags Alumnos
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.StudentPayload true "Student payload"
// @Success 200 {object} models.Student
// @Failure 400 {object} response.Ack
// @Failure 404 {object} response.Ack
// @Router /alumnos/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var payload models.StudentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Tags Alumnos
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Ack
// @Router /alumnos/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Alumno eliminado")
}
