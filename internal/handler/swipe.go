package handler

import (
	"SwipeVault/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CreateSwipe uploads a swipe's media and creates the swipe.
func CreateSwipe(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open upload failed"})
		return
	}
	defer src.Close()

	swipe, err := service.CreateSwipe(
		c.Request.Context(),
		userID,
		title,
		c.PostForm("platform"),
		c.PostForm("source_url"),
		src,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create swipe failed"})
		return
	}
	c.JSON(http.StatusOK, swipe)
}

// ListSwipes lists the caller's swipes.
func ListSwipes(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	swipes, err := service.ListSwipes(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list swipes failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"swipes": swipes})
}

// GetSwipe returns one swipe.
func GetSwipe(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	swipe, err := service.GetSwipe(userID, c.Param("id"))
	if err != nil {
		if service.IsSwipeNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get swipe failed"})
		return
	}
	c.JSON(http.StatusOK, swipe)
}

// SwipeImageURL returns a short-lived signed read URL for a swipe's media.
// Swipes still processing get a 409 without touching the blob store.
func SwipeImageURL(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	url, err := service.SwipeImageURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if service.IsSwipeNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if errors.Is(err, service.ErrSwipeNotReady) {
			c.JSON(http.StatusConflict, gin.H{"error": "Image not ready"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign image url failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
