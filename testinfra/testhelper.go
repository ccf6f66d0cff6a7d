package testinfra

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"planboard/domain"
	"planboard/security"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest serves the request and returns status, body and headers of the response.
func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}
	return resp.StatusCode, string(bodyBytes), resp.Header
}

// BuildSession builds a signed-in session with the given role.
func BuildSession(uid types.ID, role domain.Role) *security.Session {
	return &security.Session{
		Token:    "token-" + uid.String(),
		Identity: security.Identity{ID: uid, Name: "user" + uid.String(), Email: "user" + uid.String() + "@example.com", Role: role},
	}
}

// InjectSession is a middleware putting the session into the gin context, in place of the cookie filter.
func InjectSession(s *security.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		security.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}
