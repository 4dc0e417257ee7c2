package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instituto-admin-api/internal/models"
	appErrors "github.com/noah-isme/instituto-admin-api/pkg/errors"
	"github.com/noah-isme/instituto-admin-api/pkg/response"
)

type authServiceMock struct {
	resp *models.LoginResponse
	err  error
	got  models.LoginRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.got = req
	return m.resp, m.err
}

func postJSON(t *testing.T, h gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h(c)
	return w
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	svc := &authServiceMock{resp: &models.LoginResponse{
		Success: true,
		Usuario: models.PublicUser{ID: "u-1", Email: "ana@instituto.test", Name: "Ana", Role: models.RoleAdmin},
		Message: "Login exitoso",
	}}
	w := postJSON(t, NewAuthHandler(svc).Login, `{"email":"ana@instituto.test","password":"secreto"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@instituto.test", svc.got.Email)
	assert.NotContains(t, w.Body.String(), "password")

	var body models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Ana", body.Usuario.Name)
	assert.Empty(t, body.Token)
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	svc := &authServiceMock{err: appErrors.ErrInvalidCredentials}
	w := postJSON(t, NewAuthHandler(svc).Login, `{"email":"ana@instituto.test","password":"mal"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body response.Ack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Credenciales inválidas", body.Message)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	w := postJSON(t, NewAuthHandler(&authServiceMock{}).Login, `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
