package handler

import (
	"SwipeVault/internal/dto"
	"SwipeVault/internal/service"
	"SwipeVault/internal/task"
	"SwipeVault/model"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreateResearchItem creates a research item, optionally scheduling an
// ingest job or attaching an existing shared file.
func CreateResearchItem(c *gin.Context) {
	var req dto.CreateResearchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.FileID != nil && req.SourceURL != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id and source_url are mutually exclusive"})
		return
	}
	if req.SourceURL != "" {
		if err := task.ValidateIngestSourceURL(req.SourceURL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_url: " + err.Error()})
			return
		}
	}

	userID := c.MustGet("user_id").(uint64)
	item, err := service.CreateResearchItem(c.Request.Context(), userID, service.CreateResearchItemInput{
		Title:     req.Title,
		Notes:     req.Notes,
		FileID:    req.FileID,
		SourceURL: req.SourceURL,
		FileName:  req.FileName,
	})
	if err != nil {
		if errors.Is(err, service.ErrResearchFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create research item failed"})
		return
	}

	resp := dto.CreateResearchItemResponse{
		ID:     item.ID,
		Status: item.Status,
		FileID: item.FileID,
	}
	if req.SourceURL != "" {
		job, err := task.CreateIngestJob(c.Request.Context(), userID, item, req.SourceURL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule ingest failed"})
			return
		}
		resp.JobID = job.ID
	}
	c.JSON(http.StatusOK, resp)
}

// ListResearchItems lists the caller's research items.
func ListResearchItems(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := service.ListResearchItems(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list research items failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

// GetResearchItem returns one research item with its file.
func GetResearchItem(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	item, err := service.GetResearchItem(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrResearchItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get research item failed"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteResearchItem deletes one research item, cancelling its pending
// ingest jobs and reaping its file when this was the last reference.
func DeleteResearchItem(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	id := c.Param("id")

	if err := service.DeleteResearchItem(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrResearchItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		logrus.WithError(err).WithField("item_id", id).Error("delete research item failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete research item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResearchFileURL returns a presigned download URL for an item's file.
func ResearchFileURL(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	item, err := service.GetResearchItem(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrResearchItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get research item failed"})
		return
	}
	if item.File == nil || item.File.R2Key == "" || item.Status != model.ResearchItemStatusReady {
		c.JSON(http.StatusConflict, gin.H{"error": "File not ready"})
		return
	}
	url, err := service.SignResearchFileURL(c.Request.Context(), item.File)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign file url failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListMediaJobs lists the caller's media jobs.
func ListMediaJobs(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := service.ListMediaJobs(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list jobs failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
