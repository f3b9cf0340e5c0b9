package http

import (
	"compass_apiserver/internal/config"
	"compass_apiserver/internal/manager"
	"compass_apiserver/internal/pb"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type ForegroundRequest struct {
	Foreground *bool `json:"foreground" binding:"required"`
}

// NewRouter serves the session of m under /v1.
func NewRouter(m manager.Manager, info config.InfoOpt) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")

	v1.GET("/heading", func(c *gin.Context) {
		if !m.Running() || m.Faulted() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"err":    "compass session is not running",
				"status": pb.NewStatus(m),
			})
			return
		}
		_, records, err := m.Read(-1)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"err": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, pb.NewHeading(records[0]))
	})

	v1.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, pb.NewStatus(m))
	})

	v1.PUT("/foreground", func(c *gin.Context) {
		req := ForegroundRequest{}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"err": err.Error(),
			})
			return
		}
		var err error
		if *req.Foreground {
			err = m.Start()
		} else {
			err = m.Stop()
		}
		st := pb.NewStatus(m)
		if err != nil {
			log.Warnln(err)
			st.Err = err.Error()
			c.JSON(http.StatusInternalServerError, st)
			return
		}
		c.JSON(http.StatusOK, st)
	})

	v1.GET("/devices", func(c *gin.Context) {
		ids, err := m.ListDev()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"err": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, pb.Devices{IDs: ids})
	})

	v1.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, pb.Info{Title: info.Title, Message: info.Message})
	})

	return router
}
