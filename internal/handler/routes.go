package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instituto-admin-api/internal/store"
)

// Handlers groups everything mounted under the API prefix.
type Handlers struct {
	Auth         *AuthHandler
	Students     *StudentHandler
	Store        *StoreHandler
	Inscriptions *InscriptionHandler
	Caja         *CajaHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts the API on api. storeGuard runs in front of every
// /store route.
func RegisterRoutes(api *gin.RouterGroup, st *store.Store, h Handlers, storeGuard ...gin.HandlerFunc) {
	api.GET("/health", h.Metrics.Health)
	api.POST("/login", h.Auth.Login)

	alumnos := api.Group("/alumnos")
	alumnos.GET("", h.Students.List)
	alumnos.POST("", h.Students.Create)
	alumnos.PUT("/:id", h.Students.Update)
	alumnos.DELETE("/:id", h.Students.Delete)

	domain := api.Group("/store", storeGuard...)
	domain.GET("", h.Store.Snapshot)
	domain.POST("/reset", h.Store.Reset)
	domain.POST("/quote", h.Inscriptions.Quote)

	NewCollectionHandler[store.Student](st.Students).Register(domain, "/students")
	NewCollectionHandler[store.Professor](st.Professors).Register(domain, "/professors")
	NewCollectionHandler[store.Course](st.Courses).Register(domain, "/courses")
	NewCollectionHandler[store.Beca](st.Becas).Register(domain, "/becas")
	NewCollectionHandler[store.Staff](st.Personal).Register(domain, "/personal")

	caja := domain.Group("/caja")
	caja.GET("/daily", h.Caja.Daily)
	caja.GET("/daily/export", h.Caja.Export)
	NewCollectionHandler[store.CashMovement](st.Movements).
		WithCreate(h.Inscriptions.CreateMovement).
		Register(domain, "/caja")

	inscriptions := domain.Group("/inscriptions")
	inscriptions.POST("", h.Inscriptions.Create)
	inscriptions.GET("", h.Inscriptions.List)
	inscriptions.GET("/:id", h.Inscriptions.Get)
	inscriptions.POST("/:id/installments/:number/pay", h.Inscriptions.PayInstallment)
	inscriptions.DELETE("/:id", h.Inscriptions.Delete)
}
