package controllers

import (
	"net/http"

	"job-board-api/services"

	"github.com/gin-gonic/gin"
)

type JobController struct {
	jobs *services.JobService
}

func NewJobController(jobs *services.JobService) *JobController {
	return &JobController{jobs: jobs}
}

// ListJobs supports ?q=, ?type=, ?location=, ?page=, ?limit=
func (jc *JobController) ListJobs(c *gin.Context) {
	page, err := jc.jobs.List(c.Request.Context(), services.JobFilter{
		Query:    c.Query("q"),
		Type:     c.Query("type"),
		Location: c.Query("location"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (jc *JobController) GetJob(c *gin.Context) {
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := jc.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (jc *JobController) CreateJob(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req services.JobInput
	if !bindJSON(c, &req) {
		return
	}

	job, err := jc.jobs.Create(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Job created successfully",
		"job":     job,
	})
}

func (jc *JobController) MyJobs(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	jobs, err := jc.jobs.ListByPoster(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}

func (jc *JobController) DeleteJob(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := jc.jobs.Delete(c.Request.Context(), id, jobID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}
