package controllers

import (
	"net/http"

	"job-board-api/models"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
)

type ApplyRequest struct {
	JobID uint `json:"job_id" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ApplicationController struct {
	applications *services.ApplicationService
	messages     *services.MessageService
}

func NewApplicationController(applications *services.ApplicationService, messages *services.MessageService) *ApplicationController {
	return &ApplicationController{applications: applications, messages: messages}
}

// Apply submits an application to a job for the current job-seeker
func (ac *ApplicationController) Apply(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req ApplyRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := ac.applications.Apply(c.Request.Context(), id, req.JobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": app,
	})
}

func (ac *ApplicationController) MyApplications(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	apps, err := ac.applications.ListMine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
	})
}

func (ac *ApplicationController) JobApplications(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "jobId")
	if !ok {
		return
	}
	res, err := ac.applications.ListForJob(c.Request.Context(), id, jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":       res.JobID,
		"job_title":    res.JobTitle,
		"applications": res.Applications,
		"total":        len(res.Applications),
	})
}

func (ac *ApplicationController) MyJobApplications(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	apps, err := ac.applications.ListForAllMyJobs(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
	})
}

func (ac *ApplicationController) UpdateStatus(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	appID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := ac.applications.UpdateStatus(c.Request.Context(), id, appID, models.ApplicationStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Application " + string(app.Status) + " successfully",
		"application": app,
	})
}

func (ac *ApplicationController) Withdraw(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	appID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ac.applications.Withdraw(c.Request.Context(), id, appID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application withdrawn successfully"})
}

func (ac *ApplicationController) SendMessage(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	appID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	msg, err := ac.messages.Send(c.Request.Context(), id, appID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

func (ac *ApplicationController) Messages(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	appID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	msgs, err := ac.messages.ListForApplication(c.Request.Context(), id, appID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
		"total":    len(msgs),
	})
}

func (ac *ApplicationController) GetMessage(c *gin.Context) {
	id, ok := requireIdentity(c)
	if !ok {
		return
	}
	msgID, ok := parseIDParam(c, "messageId")
	if !ok {
		return
	}
	msg, err := ac.messages.GetByID(c.Request.Context(), id, msgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msg})
}
