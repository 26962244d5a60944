package daemon

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/config"
	"github.com/statusbar/dwmstatus/pkg/scheduler"
	"github.com/statusbar/dwmstatus/pkg/state"
	"github.com/statusbar/dwmstatus/pkg/types"
	"github.com/statusbar/dwmstatus/pkg/version"
)

// Router returns the HTTP API.
func (d *Daemon) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", d.getStatus)
	router.GET("/config", d.getConfig)
	router.GET("/version", getVersion)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))
	router.POST("/refresh", d.postRefresh)

	return router
}

// Status reports the cached state and the last line written.
func (d *Daemon) Status() types.Status {
	snap := d.cache.Snapshot()
	line, emitted := d.composer.Last()
	stats := d.composer.Stats()

	st := types.Status{
		Line:    line,
		Emitted: emitted,
		Started: d.started,
		Writes: types.WriteStats{
			Written:    stats.Written,
			Suppressed: stats.Suppressed,
			Failed:     stats.Failed,
		},
	}
	for _, c := range state.Categories {
		e := snap.Get(c)
		f := types.Field{
			Category: c.String(),
			Text:     e.Text,
			Display:  e.Display(),
			Stale:    e.Stale,
			Updated:  e.Updated,
			Failed:   e.Failed,
		}
		if e.Err != nil {
			f.Error = e.Err.Error()
		}
		st.Fields = append(st.Fields, f)
	}
	return st
}

func (d *Daemon) getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.Status())
}

func (d *Daemon) getConfig(c *gin.Context) {
	f, ok := d.conf.(*config.File)
	if !ok {
		err := errors.New("config is not backed by a file")
		c.IndentedJSON(http.StatusNotImplemented, err.Error())
		_ = c.AbortWithError(http.StatusNotImplemented, err)
		return
	}
	c.IndentedJSON(http.StatusOK, f.Raw())
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, types.Version{
		Version:   version.Version,
		GitCommit: version.GitCommit,
	})
}

// postRefresh takes a JSON list of category names. An empty body refreshes
// everything.
func (d *Daemon) postRefresh(c *gin.Context) {
	var names []string
	if err := c.ShouldBindJSON(&names); err != nil && !errors.Is(err, io.EOF) {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	kinds := make([]scheduler.Kind, 0, len(names))
	for _, name := range names {
		cat, err := state.ParseCategory(name)
		if err != nil {
			c.IndentedJSON(http.StatusBadRequest, err.Error())
			_ = c.AbortWithError(http.StatusBadRequest, err)
			return
		}
		kinds = append(kinds, scheduler.KindOf(cat))
	}
	if len(names) == 0 {
		kinds = scheduler.Kinds
		for _, cat := range state.Categories {
			names = append(names, cat.String())
		}
	}

	d.sched.Refresh(kinds...)
	logrus.WithField("categories", names).Debug("refresh requested")

	c.IndentedJSON(http.StatusAccepted, names)
}
