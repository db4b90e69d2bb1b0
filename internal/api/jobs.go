package api

import (
	"net/http"
	"strconv"

	"bin-finder/internal/jobs"

	"github.com/gin-gonic/gin"
)

func (s *Server) createJob(c *gin.Context) {
	file, err := c.FormFile("input_file")
	if err != nil {
		badRequest(c, "input_file is required")
		return
	}
	mode, err := jobs.ParseMode(c.PostForm("mode"))
	if err != nil {
		fail(c, err)
		return
	}
	var meters float64
	if raw := c.PostForm("meters"); raw != "" {
		if meters, err = strconv.ParseFloat(raw, 64); err != nil {
			badRequest(c, "meters must be a number")
			return
		}
	}

	inputPath, err := s.jobs.UploadPath(file.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		fail(c, err)
		return
	}

	job, err := s.jobs.Submit(jobs.Request{InputPath: inputPath, Mode: mode, Meters: meters})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusAccepted, gin.H{"job": job.Snapshot(false)})
}

func (s *Server) lookupJob(c *gin.Context) (*jobs.Job, bool) {
	job, err := s.jobs.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return job, true
}

func (s *Server) getJob(c *gin.Context) {
	if job, ok := s.lookupJob(c); ok {
		respond(c, http.StatusOK, gin.H{"job": job.Snapshot(false)})
	}
}

func (s *Server) jobLogs(c *gin.Context) {
	job, ok := s.lookupJob(c)
	if !ok {
		return
	}
	v := job.Snapshot(true)
	respond(c, http.StatusOK, gin.H{"logs": v.Logs, "status": v.Status, "progress": v.Progress})
}

func (s *Server) downloadJob(c *gin.Context) {
	job, ok := s.lookupJob(c)
	if !ok {
		return
	}
	res := job.Result()
	if res == nil {
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "job has no result", "status": job.Status()})
		return
	}
	c.FileAttachment(res.Output, res.Filename)
}

func (s *Server) cancelJob(c *gin.Context) {
	if job, ok := s.lookupJob(c); ok {
		respond(c, http.StatusOK, gin.H{"cancelled": job.Cancel()})
	}
}
