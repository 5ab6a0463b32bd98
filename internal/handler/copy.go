package handler

import (
	"SwipeVault/internal/dto"
	"SwipeVault/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GenerateCopy generates ad copy from a brief plus referenced swipe
// transcripts via the completion API.
func GenerateCopy(c *gin.Context) {
	var req dto.GenerateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	userID := c.MustGet("user_id").(uint64)
	text, err := service.GenerateCopy(c.Request.Context(), userID, req.Brief, req.SwipeIDs)
	if err != nil {
		logrus.WithError(err).Warn("copy generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "copy generation failed"})
		return
	}
	c.JSON(http.StatusOK, dto.CopyResponse{Text: text})
}

// EditCopy rewrites existing copy per an instruction via the completion API.
func EditCopy(c *gin.Context) {
	var req dto.EditCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	text, err := service.EditCopy(c.Request.Context(), req.Text, req.Instruction)
	if err != nil {
		logrus.WithError(err).Warn("copy edit failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "copy edit failed"})
		return
	}
	c.JSON(http.StatusOK, dto.CopyResponse{Text: text})
}
