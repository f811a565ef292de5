package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-station-server/database"
	"car-station-server/models"
)

func newAdminServiceRouter() *gin.Engine {
	router := gin.New()
	RegisterAdminServiceRoutes(router.Group("/admin/services"))
	return router
}

func postService(router *gin.Engine, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/services", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateServiceDuplicateNameConflicts(t *testing.T) {
	setupRouteTest(t)
	router := newAdminServiceRouter()

	w := postService(router, `{"name":"Oil Change","description":"Full synthetic","price":500}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Same name again must surface the unique constraint as a conflict,
	// not an internal error.
	w = postService(router, `{"name":"Oil Change","description":"Cheaper","price":450}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Service{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateServiceRejectsInvalidPrice(t *testing.T) {
	setupRouteTest(t)
	router := newAdminServiceRouter()

	w := postService(router, `{"name":"Freebie","price":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
