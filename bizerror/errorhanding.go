package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"planboard/common"
	"planboard/domain"
	"planboard/misc"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

// StatusOf maps an error to the status code and the message safe to show to the caller.
func StatusOf(err error) (int, string) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	var bizErr BizError
	if errors.As(genericErr, &bizErr) {
		respond := bizErr.Respond()
		return respond.Status, respond.Message
	}

	var (
		validationErr *domain.ValidationError
		transitionErr *domain.InvalidTransitionError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
		syntaxErr     *json.SyntaxError
		fieldsErr     validator.ValidationErrors
	)
	switch {
	case errors.As(genericErr, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(genericErr, &transitionErr):
		return http.StatusBadRequest, transitionErr.Error()
	case errors.As(genericErr, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.Is(genericErr, domain.ErrNotFound):
		return http.StatusNotFound, "record not found"
	case errors.As(genericErr, &conflictErr):
		return http.StatusConflict, conflictErr.Error()
	case errors.Is(genericErr, io.EOF):
		return http.StatusBadRequest, "body not found"
	case errors.As(genericErr, &syntaxErr):
		return http.StatusBadRequest, "invalid body format"
	case errors.As(genericErr, &fieldsErr):
		return http.StatusBadRequest, fieldsErr.Error()
	case errors.Is(genericErr, ErrUnauthenticated):
		return http.StatusUnauthorized, ErrUnauthenticated.Error()
	case errors.Is(genericErr, ErrInvalidPassword):
		return http.StatusUnauthorized, ErrInvalidPassword.Error()
	case errors.Is(genericErr, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()
	case errors.Is(genericErr, ErrRateLimited):
		return http.StatusTooManyRequests, ErrRateLimited.Error()
	}
	return http.StatusInternalServerError, MessageInternalError
}

func HandleError(c *gin.Context, err error) {
	status, message := StatusOf(err)
	fields := logrus.Fields{"method": c.Request.Method, "path": c.Request.URL.Path, "status": status}
	if status == http.StatusInternalServerError {
		fields["stack"] = string(debug.Stack())
		common.Log.WithFields(fields).WithError(err).Error("request failed")
	} else {
		common.Log.WithFields(fields).WithError(err).Info("request rejected")
	}
	misc.RespondError(c, status, message)
}
