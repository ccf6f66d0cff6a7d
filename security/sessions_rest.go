package security

import (
	"net/http"
	"planboard/bizerror"
	"planboard/misc"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterSessionsRestAPI(r *gin.Engine, auth *Authenticator, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/sessions", middleWares...)
	g.POST("", auth.loginHandler)
	g.DELETE("", auth.logoutHandler)

	s := r.Group("/v1/session", append(middleWares, auth.SimpleAuthFilter())...)
	s.GET("", auth.detailSessionHandler)
}

func (a *Authenticator) loginHandler(c *gin.Context) {
	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s, err := a.Login(c.Request.Context(), &login)
	if err != nil {
		panic(err)
	}
	c.SetCookie(KeySecToken, s.Token, int(TokenExpiration/time.Second), "/", "", false, true)
	misc.Respond(c, http.StatusOK, s)
}

func (a *Authenticator) logoutHandler(c *gin.Context) {
	token, _ := c.Cookie(KeySecToken)
	if token != "" {
		a.Logout(token)
	}
	c.SetCookie(KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}

func (a *Authenticator) detailSessionHandler(c *gin.Context) {
	s := ExtractSessionFromGinContext(c)
	if s == nil || time.Since(s.SigningTime) > TokenExpiration {
		panic(bizerror.ErrUnauthenticated)
	}
	misc.Respond(c, http.StatusOK, s)
}
