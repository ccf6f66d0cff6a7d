package servehttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/event"
	"planboard/persistence"
	"planboard/security"
	"planboard/servehttp"
	"planboard/testinfra"
	"planboard/tracking"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decode(body string, data interface{}) envelope {
	e := envelope{}
	Expect(json.Unmarshal([]byte(body), &e)).To(BeNil())
	if data != nil {
		Expect(json.Unmarshal(e.Data, data)).To(BeNil())
	}
	return e
}

func setupRouter(role domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := persistence.NewMemoryStore()
	Expect(store.Transaction(context.Background(), func(tx persistence.Repositories) error {
		for _, u := range []domain.User{
			{ID: 1, Name: "ann", Email: "ann@example.com", Role: domain.RoleEditor},
			{ID: 2, Name: "bob", Email: "bob@example.com", Role: domain.RoleViewer},
		} {
			u := u
			if err := tx.SaveUser(&u); err != nil {
				return err
			}
		}
		return nil
	})).To(BeNil())

	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterTrackingRestAPI(router, tracking.NewTrackingManager(store, event.NewBus()),
		testinfra.InjectSession(testinfra.BuildSession(1, role)), security.RequireEditorForWrites())
	return router
}

func request(router *gin.Engine, method, path, body string) (int, string) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	status, respBody, _ := testinfra.ExecuteRequest(req, router)
	return status, respBody
}

func TestTrackingRestAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should drive a project through its lifecycle", func(t *testing.T) {
		router := setupRouter(domain.RoleEditor)

		status, body := request(router, http.MethodPost, servehttp.PathProjects, `{"name": "launch", "managerId": "1", "team": ["1", "2"]}`)
		Expect(status).To(Equal(http.StatusCreated))
		project := domain.Project{}
		Expect(decode(body, &project).Success).To(BeTrue())
		Expect(project.Status).To(Equal(domain.ProjectActive))
		projectPath := servehttp.PathProjects + "/" + project.ID.String()

		status, body = request(router, http.MethodPost, projectPath+"/stages", `{"name": "design"}`)
		Expect(status).To(Equal(http.StatusCreated))
		stage := domain.Stage{}
		decode(body, &stage)
		Expect(stage.Position).To(Equal(1))

		status, body = request(router, http.MethodPost, servehttp.PathActivities+"/stage/"+stage.ID.String(), `{"title": "sketch"}`)
		Expect(status).To(Equal(http.StatusCreated))
		snapshot := domain.AggregateSnapshot{}
		decode(body, &snapshot)
		Expect(snapshot.Activity.Status).To(Equal(domain.ActivityPending))
		Expect(snapshot.Stage.ActivitiesCount).To(Equal(1))
		activityPath := servehttp.PathActivities + "/" + snapshot.Activity.ID.String()

		for _, s := range []string{"in_progress", "review", "completed"} {
			status, body = request(router, http.MethodPut, activityPath+"/status", `{"newStatus": "`+s+`"}`)
			Expect(status).To(Equal(http.StatusOK))
		}
		decode(body, &snapshot)
		Expect(snapshot.Project.ProgressPercentage).To(Equal(100))
		Expect(snapshot.Project.Status).To(Equal(domain.ProjectCompleted))

		status, body = request(router, http.MethodPut, activityPath+"/status", `{"newStatus": "pending"}`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(decode(body, nil).Success).To(BeFalse())

		detail := domain.ProjectDetail{}
		status, body = request(router, http.MethodGet, projectPath, "")
		Expect(status).To(Equal(http.StatusOK))
		decode(body, &detail)
		Expect(detail.Stages).To(HaveLen(1))
		Expect(detail.Stages[0].Activities).To(HaveLen(1))

		status, body = request(router, http.MethodGet, servehttp.PathDashboard, "")
		Expect(status).To(Equal(http.StatusOK))
		dashboard := tracking.Dashboard{}
		decode(body, &dashboard)
		Expect(dashboard.ProjectsCount).To(Equal(1))
		Expect(dashboard.OverallProgress).To(Equal(100))

		status, _ = request(router, http.MethodPut, projectPath+"/archive", `{"archived": true}`)
		Expect(status).To(Equal(http.StatusOK))
		projects := []domain.Project{}
		status, body = request(router, http.MethodGet, servehttp.PathProjects, "")
		Expect(status).To(Equal(http.StatusOK))
		decode(body, &projects)
		Expect(projects).To(BeEmpty())
		status, body = request(router, http.MethodGet, servehttp.PathProjects+"?archived=on", "")
		decode(body, &projects)
		Expect(projects).To(HaveLen(1))

		status, _ = request(router, http.MethodDelete, projectPath, "")
		Expect(status).To(Equal(http.StatusOK))
		status, body = request(router, http.MethodGet, projectPath, "")
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"success": false, "message": "project '` + project.ID.String() + `' not found"}`))
	})

	t.Run("should manage stages and team members", func(t *testing.T) {
		router := setupRouter(domain.RoleEditor)
		project := domain.Project{}
		_, body := request(router, http.MethodPost, servehttp.PathProjects, `{"name": "launch", "managerId": "1", "team": ["1"]}`)
		decode(body, &project)
		projectPath := servehttp.PathProjects + "/" + project.ID.String()

		first, second := domain.Stage{}, domain.Stage{}
		_, body = request(router, http.MethodPost, projectPath+"/stages", `{"name": "design"}`)
		decode(body, &first)
		_, body = request(router, http.MethodPost, projectPath+"/stages", `{"name": "build"}`)
		decode(body, &second)

		stages := []domain.Stage{}
		status, body := request(router, http.MethodPut, projectPath+"/stage-orders",
			`{"stageIds": ["`+second.ID.String()+`", "`+first.ID.String()+`"]}`)
		Expect(status).To(Equal(http.StatusOK))
		decode(body, &stages)
		Expect([]types.ID{stages[0].ID, stages[1].ID}).To(Equal([]types.ID{second.ID, first.ID}))

		status, _ = request(router, http.MethodPut, servehttp.PathStages+"/"+first.ID.String(), `{"name": "design v2"}`)
		Expect(status).To(Equal(http.StatusOK))
		status, _ = request(router, http.MethodDelete, servehttp.PathStages+"/"+second.ID.String(), "")
		Expect(status).To(Equal(http.StatusOK))
		status, body = request(router, http.MethodGet, projectPath+"/stages", "")
		decode(body, &stages)
		Expect(stages).To(HaveLen(1))
		Expect(stages[0].Name).To(Equal("design v2"))
		Expect(stages[0].Position).To(Equal(1))

		status, _ = request(router, http.MethodPost, projectPath+"/members", `{"userId": "2"}`)
		Expect(status).To(Equal(http.StatusOK))
		status, body = request(router, http.MethodPost, projectPath+"/members", `{"userId": "2"}`)
		Expect(status).To(Equal(http.StatusConflict))
		status, _ = request(router, http.MethodDelete, projectPath+"/members/2", "")
		Expect(status).To(Equal(http.StatusOK))
		status, _ = request(router, http.MethodDelete, projectPath+"/members/1", "")
		Expect(status).To(Equal(http.StatusConflict))

		status, body = request(router, http.MethodGet, projectPath+"/timeline", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(decode(body, nil).Success).To(BeTrue())
	})

	t.Run("should reject bad requests", func(t *testing.T) {
		router := setupRouter(domain.RoleEditor)

		status, body := request(router, http.MethodGet, servehttp.PathProjects+"/abc", "")
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"success": false, "message": "invalid id 'abc'"}`))

		status, body = request(router, http.MethodPost, servehttp.PathProjects, `bbb`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(decode(body, nil).Success).To(BeFalse())

		status, body = request(router, http.MethodPost, servehttp.PathProjects, `{"name": "launch"}`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"success": false,
			"message": "field 'managerId' failed on 'required'; field 'team' failed on 'required'"}`))

		status, body = request(router, http.MethodGet, servehttp.PathProjects+"?status=paused", "")
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"success": false,
			"message": "field 'status' failed on 'oneof=active completed on_hold cancelled'"}`))

		status, _ = request(router, http.MethodGet, servehttp.PathActivities+"/404", "")
		Expect(status).To(Equal(http.StatusNotFound))
	})

	t.Run("viewers should only read", func(t *testing.T) {
		router := setupRouter(domain.RoleViewer)

		status, body := request(router, http.MethodGet, servehttp.PathProjects, "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"success": true, "data": []}`))

		status, body = request(router, http.MethodPost, servehttp.PathProjects, `{"name": "launch", "managerId": "1", "team": ["1"]}`)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"success": false, "message": "forbidden"}`))
	})
}
