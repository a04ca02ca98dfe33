// controllers/srv.go
package controllers

import (
	"net/http"

	"github.com/Ahmed-Ibrahim-0/switches-controller/app"
	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
	StatusError   = "ERROR"
)

type Srv struct {
	Service *lifecycle.Service
	Metrics *app.Metrics
	Log     *logrus.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{Service: a.Service, Metrics: a.Metrics, Log: a.Log}
}

// --- helpers ---

func ok(c *gin.Context, code int, data app.H) {
	c.JSON(code, app.H{"status": StatusSuccess, "data": data})
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(code, app.H{"status": StatusFail, "message": msg})
}

// respondErr maps an engine error to its HTTP status and envelope.
func (s *Srv) respondErr(c *gin.Context, err error) {
	_ = c.Error(err)
	switch lifecycle.KindOf(err) {
	case lifecycle.KindValidation, lifecycle.KindConflict:
		fail(c, http.StatusBadRequest, err.Error())
	case lifecycle.KindNotFound:
		fail(c, http.StatusNotFound, "Switch not found")
	default:
		s.Log.WithError(err).WithField("request_id", c.GetString("requestID")).Error("store failure")
		c.JSON(http.StatusInternalServerError, app.H{"status": StatusError, "message": err.Error()})
	}
}
