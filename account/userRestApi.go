package account

import (
	"net/http"
	"planboard/bizerror"
	"planboard/domain"
	"planboard/misc"
	"planboard/security"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathUsers = "/v1/users"
)

// RegisterUsersRestAPI lets every signed-in user list users, only admins change them.
func RegisterUsersRestAPI(r *gin.Engine, m AccountManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", func(c *gin.Context) {
		users, err := m.QueryUsers(c.Request.Context())
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, users)
	})

	admin := g.Group("", security.RequireRole(domain.RoleAdmin))
	admin.POST("", func(c *gin.Context) {
		creation := domain.UserCreation{}
		if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		user, err := m.CreateUser(c.Request.Context(), &creation)
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusCreated, user)
	})
	admin.PUT("/:id", func(c *gin.Context) {
		id, err := misc.BindingPathID(c, "id")
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		updating := domain.UserUpdating{}
		if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		user, err := m.UpdateUser(c.Request.Context(), id, &updating)
		if err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, user)
	})
	admin.DELETE("/:id", func(c *gin.Context) {
		id, err := misc.BindingPathID(c, "id")
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		if err := m.DeleteUser(c.Request.Context(), id); err != nil {
			panic(err)
		}
		misc.Respond(c, http.StatusOK, nil)
	})
}
