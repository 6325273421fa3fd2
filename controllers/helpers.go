package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"job-board-api/middleware"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindBadRequest:   http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindForbidden:    http.StatusForbidden,
	services.KindNotFound:     http.StatusNotFound,
	services.KindConflict:     http.StatusConflict,
	services.KindInternal:     http.StatusInternalServerError,
}

// respondError renders a service error. Internal causes are logged, never returned.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		zlog.Logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString("requestID")).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"error": services.MessageOf(err)})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query(name))); err == nil {
		return v
	}
	return def
}

func queryBool(c *gin.Context, name string) bool {
	v := strings.TrimSpace(c.Query(name))
	return v == "1" || strings.EqualFold(v, "true")
}

// bindJSON binds the body and renders validation failures per field.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[jsonFieldName(fe)] = validationMessage(fe)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return false
	}
	return true
}

var registerTagNames sync.Once

// UseJSONFieldNames makes validation errors report json field names.
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func jsonFieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}

func requireIdentity(c *gin.Context) (services.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return services.Identity{}, false
	}
	return id, true
}
