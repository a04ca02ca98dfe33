// controllers/switch_controller.go
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Ahmed-Ibrahim-0/switches-controller/app"
	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/gin-gonic/gin"
)

type SwitchController struct{ *Srv }

func NewSwitchController(s *Srv) *SwitchController { return &SwitchController{Srv: s} }

func keyParam(c *gin.Context) (int64, bool) {
	key, err := strconv.ParseInt(c.Param("uniqueKey"), 10, 64)
	if err != nil || key <= 0 {
		fail(c, http.StatusBadRequest, "uniqueKey must be a positive number")
		return 0, false
	}
	return key, true
}

// GET /api/v1/switches
func (sc *SwitchController) ListAll(c *gin.Context) {
	all, err := sc.Service.All(c.Request.Context())
	if err != nil {
		sc.respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, app.H{"switches": all})
}

// POST /api/v1/switches
func (sc *SwitchController) Create(c *gin.Context) {
	var in lifecycle.Fields
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	sw, err := sc.Service.Create(c.Request.Context(), in)
	sc.Metrics.Observe("create", err)
	if err != nil {
		sc.respondErr(c, err)
		return
	}
	ok(c, http.StatusCreated, app.H{"newSwitch": sw})
}

// PUT /api/v1/switches/:uniqueKey
func (sc *SwitchController) Replace(c *gin.Context) {
	key, good := keyParam(c)
	if !good {
		return
	}
	var in lifecycle.Fields
	// an empty body decodes to empty Fields and is rejected by the service
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	sw, err := sc.Service.Replace(c.Request.Context(), key, in)
	sc.Metrics.Observe("replace", err)
	if err != nil {
		sc.respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, app.H{"replacedSwitch": sw})
}

// DELETE /api/v1/switches/:uniqueKey
func (sc *SwitchController) Delete(c *gin.Context) {
	key, good := keyParam(c)
	if !good {
		return
	}
	if _, err := sc.Service.Delete(c.Request.Context(), key); err != nil {
		sc.respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/switches/filter?status=&page=&limit=&provider=&deliveredStatus=
func (sc *SwitchController) Filter(c *gin.Context) {
	q, err := lifecycle.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		sc.respondErr(c, err)
		return
	}
	page, err := sc.Service.List(c.Request.Context(), q)
	if err != nil {
		sc.respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, app.H{
		"switches": page.Switches,
		"pagination": app.H{
			"currentPage":  page.CurrentPage,
			"totalPages":   page.TotalPages,
			"totalRecords": page.TotalRecords,
		},
	})
}

// GET /api/v1/switches/search?field=serialNumber|uniqueKey&value=
func (sc *SwitchController) Search(c *gin.Context) {
	field := c.Query("field")
	found, err := sc.Service.Search(c.Request.Context(), field, c.Query("value"))
	if err != nil {
		if lifecycle.KindOf(err) == lifecycle.KindNotFound {
			fail(c, http.StatusNotFound, "No switch found matching that criteria")
			return
		}
		sc.respondErr(c, err)
		return
	}
	if field == lifecycle.SearchByUniqueKey {
		ok(c, http.StatusOK, app.H{"foundSwitch": found[0]})
		return
	}
	ok(c, http.StatusOK, app.H{"foundSwitch": found})
}

// GET /api/v1/switches/stats
func (sc *SwitchController) Stats(c *gin.Context) {
	st, err := sc.Service.Stats(c.Request.Context())
	if err != nil {
		sc.respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, app.H{
		"total":             st.Total,
		"breakdown":         st.Breakdown,
		"noProviderCount":   st.NoProviderCount,
		"notDeliveredCount": st.NotDeliveredCount,
		"deliveredCount":    st.DeliveredCount,
	})
}
