package indices

import (
	"net/http"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/misc"
	"planboard/security"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-requests"
	PathSearch        = "/v1/dashboard/search"
)

type ProjectSearch struct {
	Text string `form:"q" binding:"max=200"`
}

// RegisterIndicesRestAPI exposes the project search to every signed-in user and the full sync to admins.
func RegisterIndicesRestAPI(r *gin.Engine, s *Synchronizer, middleWares ...gin.HandlerFunc) {
	r.Group(PathSearch, middleWares...).GET("", func(c *gin.Context) {
		q := ProjectSearch{}
		if err := c.ShouldBindQuery(&q); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		docs, err := SearchProjectsFunc(c.Request.Context(), q.Text)
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, docs)
	})

	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", security.RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		misc.Respond(c, http.StatusOK, gin.H{"scheduled": s.ScheduleNewSyncRun()})
	})
}
