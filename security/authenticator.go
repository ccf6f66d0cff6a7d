package security

import (
	"context"
	"errors"
	"planboard/bizerror"
	"planboard/common"
	"planboard/domain"
	"planboard/persistence"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

// Authenticator checks email/password pairs against the user table and keeps sessions in a token cache.
type Authenticator struct {
	store        persistence.Store
	tokenCache   *cache.Cache
	loginLimiter *rate.Limiter
}

func NewAuthenticator(store persistence.Store, loginLimiter *rate.Limiter) *Authenticator {
	if loginLimiter == nil {
		loginLimiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Authenticator{
		store:        store,
		tokenCache:   cache.New(TokenExpiration, 1*time.Minute),
		loginLimiter: loginLimiter,
	}
}

func HashSecret(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckSecret(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (a *Authenticator) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if !a.loginLimiter.Allow() {
		return nil, bizerror.ErrRateLimited
	}

	user, err := a.store.Repositories(ctx).FindUserByEmail(strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, bizerror.ErrInvalidPassword
	} else if err != nil {
		return nil, err
	}
	if !CheckSecret(user.Secret, req.Password) {
		common.Log.WithField("userId", user.ID).Info("login rejected")
		return nil, bizerror.ErrInvalidPassword
	}

	s := &Session{
		Token:       uuid.New().String(),
		Identity:    Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
		SigningTime: time.Now(),
	}
	a.tokenCache.Set(s.Token, s, cache.DefaultExpiration)
	common.Log.WithFields(logrus.Fields{"userId": user.ID, "role": user.Role}).Info("user signed in")
	return s, nil
}

func (a *Authenticator) Logout(token string) {
	a.tokenCache.Delete(token)
}

func (a *Authenticator) Lookup(token string) (*Session, bool) {
	value, found := a.tokenCache.Get(token)
	if !found {
		return nil, false
	}
	s, ok := value.(*Session)
	return s, ok
}

// Revoke drops every session of the user, used when the user is deleted or changes role.
func (a *Authenticator) Revoke(userID types.ID) {
	for token, item := range a.tokenCache.Items() {
		if s, ok := item.Object.(*Session); ok && s.Identity.ID == userID {
			a.tokenCache.Delete(token)
		}
	}
}

func (a *Authenticator) SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(KeySecToken)
		if err != nil {
			panic(bizerror.ErrUnauthenticated)
		}
		s, found := a.Lookup(token)
		if !found {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

// RequireRole rejects requests whose session role is not one of roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s := ExtractSessionFromGinContext(ctx)
		if s == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		for _, r := range roles {
			if s.Identity.Role == r {
				ctx.Next()
				return
			}
		}
		panic(bizerror.ErrForbidden)
	}
}

// RequireEditorForWrites lets every signed-in role read and only editors and admins write.
func RequireEditorForWrites() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s := ExtractSessionFromGinContext(ctx)
		if s == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		switch ctx.Request.Method {
		case "GET", "HEAD", "OPTIONS":
		default:
			if !s.Identity.Role.CanEdit() {
				panic(bizerror.ErrForbidden)
			}
		}
		ctx.Next()
	}
}
