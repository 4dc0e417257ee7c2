package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instituto-admin-api/internal/store"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

type snapshotStore interface {
	Snapshot() store.Snapshot
	Reset(ctx context.Context) error
}

// StoreHandler exposes the whole domain store.
type StoreHandler struct {
	store snapshotStore
}

// NewStoreHandler constructs StoreHandler.
func NewStoreHandler(st snapshotStore) *StoreHandler {
	return &StoreHandler{store: st}
}

// Snapshot godoc
// @Summary Full store snapshot
// @Tags Store
// @Produce json
// @Success 200 {object} store.Snapshot
// @Router /store [get]
func (h *StoreHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Snapshot())
}

// Reset godoc
// @Summary Reset store
// @Description Replaces every collection with an empty list
// @Tags Store
// @Produce json
// @Success 200 {object} response.Ack
// @Failure 500 {object} response.Ack
// @Router /store/reset [post]
func (h *StoreHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		response.Error(c, storeError(err))
		return
	}
	response.OK(c, "Datos restablecidos")
}

type collection[T any] interface {
	Name() string
	List() []T
	Get(id int) (T, bool)
	Add(ctx context.Context, v T) (T, error)
	Merge(ctx context.Context, id int, patch json.RawMessage) (T, bool, error)
	Remove(ctx context.Context, id int) (bool, error)
}

// CollectionHandler serves list/get/create/patch/delete for one store
// collection.
type CollectionHandler[T any] struct {
	items  collection[T]
	create gin.HandlerFunc
}

// NewCollectionHandler constructs a handler over items.
func NewCollectionHandler[T any](items collection[T]) *CollectionHandler[T] {
	return &CollectionHandler[T]{items: items}
}

// WithCreate replaces the default POST handler.
func (h *CollectionHandler[T]) WithCreate(create gin.HandlerFunc) *CollectionHandler[T] {
	h.create = create
	return h
}

// Register mounts the collection under rg at path.
func (h *CollectionHandler[T]) Register(rg *gin.RouterGroup, path string) {
	g := rg.Group(path)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	if h.create != nil {
		g.POST("", h.create)
	} else {
		g.POST("", h.Create)
	}
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}

// List returns every record of the collection.
func (h *CollectionHandler[T]) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.items.List())
}

// Get returns one record.
func (h *CollectionHandler[T]) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, found := h.items.Get(id)
	if !found {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Registro no encontrado"))
		return
	}
	response.JSON(c, http.StatusOK, rec)
}

// Create appends a record; any id in the body is ignored.
func (h *CollectionHandler[T]) Create(c *gin.Context) {
	var rec T
	if err := c.ShouldBindJSON(&rec); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+h.items.Name()+" payload"))
		return
	}
	created, err := h.items.Add(c.Request.Context(), rec)
	if err != nil {
		response.Error(c, storeError(err))
		return
	}
	response.Created(c, created)
}

// Patch merges the body into the record. The id never changes.
func (h *CollectionHandler[T]) Patch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+h.items.Name()+" payload"))
		return
	}
	updated, found, err := h.items.Merge(c.Request.Context(), id, body)
	if !found {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Registro no encontrado"))
		return
	}
	if err != nil {
		response.Error(c, storeError(err))
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Delete removes the record.
func (h *CollectionHandler[T]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.items.Remove(c.Request.Context(), id)
	if err != nil {
		response.Error(c, storeError(err))
		return
	}
	if !found {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Registro no encontrado"))
		return
	}
	response.OK(c, "Registro eliminado")
}

// pathID parses a positive integer path parameter, writing a 400 when it
// is not one.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "ID inválido"))
		return 0, false
	}
	return id, true
}

func storeError(err error) error {
	if errors.Is(err, store.ErrInvalidRecord) {
		return appErrors.Validation(err, "Datos inválidos")
	}
	return appErrors.Internal(err, "store operation failed")
}
