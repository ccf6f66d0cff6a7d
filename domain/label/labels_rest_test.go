package label_test

import (
	"net/http"
	"net/http/httptest"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/domain/label"
	"planboard/persistence"
	"planboard/testinfra"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestLabelsRestAPI(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	setup := func(role domain.Role) *gin.Engine {
		router := gin.New()
		router.Use(bizerror.ErrorHandling())
		label.RegisterLabelsRestAPI(router, label.NewLabelManager(persistence.NewMemoryStore()),
			testinfra.InjectSession(testinfra.BuildSession(1, role)))
		return router
	}

	t.Run("admins should manage tags", func(t *testing.T) {
		router := setup(domain.RoleAdmin)
		req := httptest.NewRequest(http.MethodPost, label.PathTags, strings.NewReader(`{"name": "internal", "color": "blue"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"name":"internal","color":"blue"`))

		req = httptest.NewRequest(http.MethodPost, label.PathTags, strings.NewReader(`{"name": "INTERNAL"}`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"success": false, "message": "tag 'INTERNAL' already exists"}`))

		status, body, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, label.PathTags, nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"success":true`))
		Expect(body).To(ContainSubstring(`"name":"internal"`))

		status, _, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodDelete, label.PathTags+"/abc", nil), router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("editors should only read", func(t *testing.T) {
		router := setup(domain.RoleEditor)
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, label.PathAreas, nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"success": true, "data": []}`))

		req := httptest.NewRequest(http.MethodPost, label.PathAreas, strings.NewReader(`{"name": "backend"}`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"success": false, "message": "forbidden"}`))
	})
}
