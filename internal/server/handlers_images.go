package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultImageQuery = "luxury private members club london"

// searchImages proxies the stock photo search and reshapes the response to the
// flat descriptor list the site components consume.
func (a *App) searchImages(c *gin.Context) {
	if !a.images.enabled() {
		writeError(c, http.StatusInternalServerError, "Image API key not configured")
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		query = defaultImageQuery
	}
	orientation := strings.TrimSpace(c.Query("orientation"))
	if orientation == "" {
		orientation = "landscape"
	}
	count := 1
	if rawCount := strings.TrimSpace(c.Query("count")); rawCount != "" {
		if parsed, err := strconv.Atoi(rawCount); err == nil && parsed > 0 {
			count = parsed
		}
	}
	if count > 10 {
		count = 10
	}

	result, err := a.images.SearchPhotos(c.Request.Context(), query, count, orientation)
	if err != nil {
		log.Printf("images: search failed: %v", err)
		writeError(c, http.StatusInternalServerError, "Failed to fetch images")
		return
	}

	images := make([]gin.H, 0, len(result.Results))
	for _, photo := range result.Results {
		alt := photo.AltDescription
		if alt == "" {
			alt = photo.Description
		}
		if alt == "" {
			alt = query
		}
		images = append(images, gin.H{
			"id":              photo.ID,
			"url":             photo.URLs.Regular,
			"urlFull":         photo.URLs.Full,
			"urlSmall":        photo.URLs.Small,
			"alt":             alt,
			"photographer":    photo.User.Name,
			"photographerUrl": photo.User.Links.HTML,
			"blurHash":        photo.BlurHash,
			"width":           photo.Width,
			"height":          photo.Height,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"images": images,
		"total":  result.Total,
	})
}
