package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// voiceToken issues the browser token the voice widget needs to open its
// session. Served on both GET and POST for widget compatibility.
func (a *App) voiceToken(c *gin.Context) {
	if !a.voiceTok.enabled() {
		log.Printf("voice: HUME_API_KEY or HUME_SECRET_KEY not set")
		writeError(c, http.StatusInternalServerError, "Voice credentials not configured")
		return
	}

	token, err := a.voiceTok.FetchAccessToken(c.Request.Context())
	if err != nil {
		log.Printf("voice: token issuance failed: %v", err)
		var tokenErr *voiceTokenError
		if errors.As(err, &tokenErr) {
			c.AbortWithStatusJSON(tokenErr.Status, gin.H{
				"detail":  "Failed to get voice token",
				"details": tokenErr.Detail,
			})
			return
		}
		writeError(c, http.StatusInternalServerError, "Failed to get voice token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}
