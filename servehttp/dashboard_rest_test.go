package servehttp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/servehttp"
	"planboard/testinfra"
	"planboard/tracking"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type trackingManagerMock struct {
	tracking.TrackingManagerTraits
	mock.Mock
}

func (m *trackingManagerMock) Dashboard(ctx context.Context) (*tracking.Dashboard, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(*tracking.Dashboard)
	return d, args.Error(1)
}

func TestDashboardRestAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		dashboard  *tracking.Dashboard
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name: "returns the summary",
			dashboard: &tracking.Dashboard{
				ProjectsCount:      1,
				ProjectsByStatus:   map[domain.ProjectStatus]int{domain.ProjectActive: 1},
				ActivitiesByStatus: map[domain.ActivityStatus]int{},
				OverdueActivities:  []domain.Activity{},
				OverallProgress:    40,
			},
			wantStatus: http.StatusOK,
			wantBody: `{"success": true, "data": {"projectsCount": 1, "projectsByStatus": {"active": 1}, "archivedCount": 0,
				"activitiesCount": 0, "activitiesByStatus": {}, "overallProgress": 40, "overdueActivities": []}}`,
		},
		{
			name:       "hides unexpected errors",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success": false, "message": "` + bizerror.MessageInternalError + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &trackingManagerMock{}
			m.On("Dashboard", mock.Anything).Return(tt.dashboard, tt.err)

			router := gin.New()
			router.Use(bizerror.ErrorHandling())
			servehttp.RegisterTrackingRestAPI(router, m, testinfra.InjectSession(testinfra.BuildSession(1, domain.RoleViewer)))

			status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, servehttp.PathDashboard, nil), router)
			assert.Equal(t, tt.wantStatus, status)
			assert.JSONEq(t, tt.wantBody, body)
			m.AssertExpectations(t)
		})
	}
}
