package servehttp

import (
	"net/http"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/misc"
	"planboard/security"
	"planboard/tracking"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathProjects   = "/v1/projects"
	PathStages     = "/v1/stages"
	PathActivities = "/v1/activities"
	PathDashboard  = "/v1/dashboard"
)

// RegisterTrackingRestAPI exposes projects, stages, activities and the dashboard.
func RegisterTrackingRestAPI(r *gin.Engine, m tracking.TrackingManagerTraits, middleWares ...gin.HandlerFunc) {
	h := &trackingHandler{m: m}

	projects := r.Group(PathProjects, middleWares...)
	projects.GET("", h.handleQueryProjects)
	projects.POST("", h.handleCreateProject)
	projects.GET(":id", h.handleDetailProject)
	projects.PUT(":id", h.handleUpdateProject)
	projects.DELETE(":id", h.handleDeleteProject)
	projects.PUT(":id/archive", h.handleArchiveProject)
	projects.POST(":id/members", h.handleAddTeamMember)
	projects.DELETE(":id/members/:userId", h.handleRemoveTeamMember)
	projects.GET(":id/timeline", h.handleProjectTimeline)
	projects.GET(":id/stages", h.handleListStages)
	projects.POST(":id/stages", h.handleCreateStage)
	projects.PUT(":id/stage-orders", h.handleReorderStages)

	stages := r.Group(PathStages, middleWares...)
	stages.PUT(":id", h.handleUpdateStage)
	stages.DELETE(":id", h.handleDeleteStage)
	stages.GET(":id/activities", h.handleListActivities)

	activities := r.Group(PathActivities, middleWares...)
	activities.POST("stage/:stageId", h.handleAddActivity)
	activities.GET(":id", h.handleDetailActivity)
	activities.PUT(":id", h.handleUpdateActivity)
	activities.PUT(":id/status", h.handleChangeActivityStatus)
	activities.DELETE(":id", h.handleRemoveActivity)

	r.Group(PathDashboard, middleWares...).GET("", h.handleDashboard)
}

type trackingHandler struct {
	m tracking.TrackingManagerTraits
}

type statusChanging struct {
	NewStatus domain.ActivityStatus `json:"newStatus"`
}

func (h *trackingHandler) handleQueryProjects(c *gin.Context) {
	query := domain.ProjectQuery{}
	if err := c.ShouldBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	projects, err := h.m.QueryProjects(c.Request.Context(), &query)
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, projects)
}

func (h *trackingHandler) handleCreateProject(c *gin.Context) {
	creation := domain.ProjectCreation{}
	bindBody(c, &creation)
	project, err := h.m.CreateProject(c.Request.Context(), &creation, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusCreated, project)
}

func (h *trackingHandler) handleDetailProject(c *gin.Context) {
	detail, err := h.m.DetailProject(c.Request.Context(), bindID(c, "id"))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, detail)
}

func (h *trackingHandler) handleUpdateProject(c *gin.Context) {
	id := bindID(c, "id")
	updating := domain.ProjectUpdating{}
	bindBody(c, &updating)
	project, err := h.m.UpdateProject(c.Request.Context(), id, &updating, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, project)
}

func (h *trackingHandler) handleDeleteProject(c *gin.Context) {
	if err := h.m.DeleteProject(c.Request.Context(), bindID(c, "id"), security.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, nil)
}

func (h *trackingHandler) handleArchiveProject(c *gin.Context) {
	id := bindID(c, "id")
	archiving := domain.ProjectArchiving{}
	bindBody(c, &archiving)
	project, err := h.m.ArchiveProject(c.Request.Context(), id, archiving.Archived, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, project)
}

func (h *trackingHandler) handleAddTeamMember(c *gin.Context) {
	id := bindID(c, "id")
	member := domain.TeamMemberCommand{}
	bindBody(c, &member)
	project, err := h.m.AddTeamMember(c.Request.Context(), id, &member, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, project)
}

func (h *trackingHandler) handleRemoveTeamMember(c *gin.Context) {
	id := bindID(c, "id")
	userID := bindID(c, "userId")
	project, err := h.m.RemoveTeamMember(c.Request.Context(), id, userID, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, project)
}

func (h *trackingHandler) handleProjectTimeline(c *gin.Context) {
	timeline, err := h.m.ProjectTimeline(c.Request.Context(), bindID(c, "id"))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, timeline)
}

func (h *trackingHandler) handleListStages(c *gin.Context) {
	stages, err := h.m.ListStages(c.Request.Context(), bindID(c, "id"))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, stages)
}

func (h *trackingHandler) handleCreateStage(c *gin.Context) {
	projectID := bindID(c, "id")
	creation := domain.StageCreation{}
	bindBody(c, &creation)
	stage, err := h.m.CreateStage(c.Request.Context(), projectID, &creation, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusCreated, stage)
}

func (h *trackingHandler) handleReorderStages(c *gin.Context) {
	projectID := bindID(c, "id")
	reordering := domain.StageReordering{}
	bindBody(c, &reordering)
	stages, err := h.m.ReorderStages(c.Request.Context(), projectID, &reordering, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, stages)
}

func (h *trackingHandler) handleUpdateStage(c *gin.Context) {
	id := bindID(c, "id")
	updating := domain.StageUpdating{}
	bindBody(c, &updating)
	stage, err := h.m.UpdateStage(c.Request.Context(), id, &updating, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, stage)
}

func (h *trackingHandler) handleDeleteStage(c *gin.Context) {
	snapshot, err := h.m.DeleteStage(c.Request.Context(), bindID(c, "id"), security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, snapshot)
}

func (h *trackingHandler) handleListActivities(c *gin.Context) {
	activities, err := h.m.ListActivities(c.Request.Context(), bindID(c, "id"))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, activities)
}

func (h *trackingHandler) handleAddActivity(c *gin.Context) {
	stageID := bindID(c, "stageId")
	creation := domain.ActivityCreation{}
	bindBody(c, &creation)
	snapshot, err := h.m.AddActivity(c.Request.Context(), stageID, &creation, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusCreated, snapshot)
}

func (h *trackingHandler) handleDetailActivity(c *gin.Context) {
	activity, err := h.m.DetailActivity(c.Request.Context(), bindID(c, "id"))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, activity)
}

func (h *trackingHandler) handleUpdateActivity(c *gin.Context) {
	id := bindID(c, "id")
	updating := domain.ActivityUpdating{}
	bindBody(c, &updating)
	snapshot, err := h.m.UpdateActivity(c.Request.Context(), id, &updating, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, snapshot)
}

func (h *trackingHandler) handleChangeActivityStatus(c *gin.Context) {
	id := bindID(c, "id")
	changing := statusChanging{}
	bindBody(c, &changing)
	snapshot, err := h.m.ChangeActivityStatus(c.Request.Context(),
		&domain.ChangeStatusCommand{ActivityID: id, NewStatus: changing.NewStatus}, security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, snapshot)
}

func (h *trackingHandler) handleRemoveActivity(c *gin.Context) {
	snapshot, err := h.m.RemoveActivity(c.Request.Context(), bindID(c, "id"), security.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, snapshot)
}

func (h *trackingHandler) handleDashboard(c *gin.Context) {
	dashboard, err := h.m.Dashboard(c.Request.Context())
	if err != nil {
		panic(err)
	}
	misc.Respond(c, http.StatusOK, dashboard)
}

func bindID(c *gin.Context, name string) types.ID {
	id, err := misc.BindingPathID(c, name)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func bindBody(c *gin.Context, obj interface{}) {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
}
