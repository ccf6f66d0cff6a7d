package bizerror_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/testinfra"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestErrorHandling(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	serve := func(err interface{}, usePanic bool) (int, string) {
		router := gin.New()
		router.Use(bizerror.ErrorHandling())
		router.GET("/", func(c *gin.Context) {
			if usePanic {
				panic(err)
			}
			_ = c.Error(err.(error))
		})
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)
		return status, body
	}

	t.Run("should map operational errors to status codes with their message", func(t *testing.T) {
		cases := []struct {
			err     error
			status  int
			message string
		}{
			{domain.NewValidationError("activity title must not be empty"), http.StatusBadRequest, "activity title must not be empty"},
			{&domain.InvalidTransitionError{From: domain.ActivityPending, To: domain.ActivityCompleted}, http.StatusBadRequest,
				"transition from 'pending' to 'completed' is not allowed"},
			{&domain.NotFoundError{Kind: "activity", ID: "12"}, http.StatusNotFound, "activity '12' not found"},
			{fmt.Errorf("wrapped: %w", domain.ErrNotFound), http.StatusNotFound, "record not found"},
			{domain.NewConflictError("manager '1' is not a member of the project team"), http.StatusConflict,
				"manager '1' is not a member of the project team"},
			{bizerror.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
			{bizerror.ErrForbidden, http.StatusForbidden, "forbidden"},
			{&bizerror.ErrBadParam{Cause: errors.New("invalid id 'x'")}, http.StatusBadRequest, "invalid id 'x'"},
		}
		for _, c := range cases {
			status, body := serve(c.err, true)
			Expect(status).To(Equal(c.status))
			Expect(body).To(MatchJSON(`{"success": false, "message": "` + c.message + `"}`))

			status, body = serve(c.err, false)
			Expect(status).To(Equal(c.status))
			Expect(body).To(MatchJSON(`{"success": false, "message": "` + c.message + `"}`))
		}
	})

	t.Run("should hide internal error details", func(t *testing.T) {
		status, body := serve(errors.New("dial tcp 10.0.0.3:3306: connection refused"), true)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"success": false, "message": "internal error, try again later"}`))

		status, body = serve("a panic value", true)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"success": false, "message": "internal error, try again later"}`))
	})

	t.Run("bad param should fall back to default message", func(t *testing.T) {
		err := bizerror.ErrBadParam{}
		Expect(err.Error()).To(Equal("bad param"))
		Expect(errors.Unwrap(&bizerror.ErrBadParam{Cause: bizerror.ErrForbidden})).To(Equal(bizerror.ErrForbidden))
	})
}
