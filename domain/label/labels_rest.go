package label

import (
	"net/http"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/misc"
	"planboard/security"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathAreas = "/v1/areas"
	PathTags  = "/v1/tags"
)

// RegisterLabelsRestAPI lets every signed-in user read areas and tags, only admins change them.
func RegisterLabelsRestAPI(r *gin.Engine, m LabelManagerTraits, middleWares ...gin.HandlerFunc) {
	areas := r.Group(PathAreas, middleWares...)
	areas.GET("", func(c *gin.Context) {
		records, err := m.QueryAreas(c.Request.Context())
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, records)
	})
	adminAreas := areas.Group("", security.RequireRole(domain.RoleAdmin))
	adminAreas.POST("", func(c *gin.Context) {
		creation := bindAreaCreation(c)
		record, err := m.CreateArea(c.Request.Context(), creation)
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusCreated, record)
	})
	adminAreas.PUT("/:id", func(c *gin.Context) {
		id := bindID(c)
		record, err := m.UpdateArea(c.Request.Context(), id, bindAreaCreation(c))
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, record)
	})
	adminAreas.DELETE("/:id", func(c *gin.Context) {
		if err := m.DeleteArea(c.Request.Context(), bindID(c)); err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, nil)
	})

	tags := r.Group(PathTags, middleWares...)
	tags.GET("", func(c *gin.Context) {
		records, err := m.QueryTags(c.Request.Context())
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, records)
	})
	adminTags := tags.Group("", security.RequireRole(domain.RoleAdmin))
	adminTags.POST("", func(c *gin.Context) {
		record, err := m.CreateTag(c.Request.Context(), bindTagCreation(c))
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusCreated, record)
	})
	adminTags.PUT("/:id", func(c *gin.Context) {
		id := bindID(c)
		record, err := m.UpdateTag(c.Request.Context(), id, bindTagCreation(c))
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, record)
	})
	adminTags.DELETE("/:id", func(c *gin.Context) {
		if err := m.DeleteTag(c.Request.Context(), bindID(c)); err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, nil)
	})
}

func bindID(c *gin.Context) types.ID {
	id, err := misc.BindingPathID(c, "id")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func bindAreaCreation(c *gin.Context) *domain.AreaCreation {
	creation := domain.AreaCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return &creation
}

func bindTagCreation(c *gin.Context) *domain.TagCreation {
	creation := domain.TagCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return &creation
}
