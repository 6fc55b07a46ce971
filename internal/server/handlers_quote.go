package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type quoteEstimateRequest struct {
	TeachingType      string   `json:"teaching_type"`
	ExperienceLevel   string   `json:"experience_level"`
	CoverType         string   `json:"cover_type"`
	AdditionalOptions []string `json:"additional_options"`
}

type quoteLeadRequest struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Postcode          string   `json:"postcode"`
	TeachingType      string   `json:"teaching_type"`
	ExperienceLevel   string   `json:"experience_level"`
	CoverType         string   `json:"cover_type"`
	AdditionalOptions []string `json:"additional_options"`
}

func (a *App) quoteEstimate(c *gin.Context) {
	var payload quoteEstimateRequest
	if !mustJSON(c, &payload) {
		return
	}

	estimate := estimatePremium(payload.ExperienceLevel, payload.CoverType, payload.AdditionalOptions)
	c.JSON(http.StatusOK, gin.H{
		"teaching_type":      payload.TeachingType,
		"experience_level":   payload.ExperienceLevel,
		"cover_type":         payload.CoverType,
		"additional_options": payload.AdditionalOptions,
		"monthly":            estimate.Monthly,
		"annual":             estimate.Annual,
	})
}

// quoteLead captures a quote request as a sales lead. Without a configured
// database the lead is logged and acknowledged but not stored, matching the
// degrade-on-missing-config policy of the rest of the service.
func (a *App) quoteLead(c *gin.Context) {
	var payload quoteLeadRequest
	if !mustJSON(c, &payload) {
		return
	}

	name := strings.TrimSpace(payload.Name)
	email := strings.TrimSpace(payload.Email)
	if name == "" || email == "" {
		writeError(c, http.StatusBadRequest, "name and email are required")
		return
	}
	if !strings.Contains(email, "@") {
		writeError(c, http.StatusBadRequest, "email is not valid")
		return
	}

	estimate := estimatePremium(payload.ExperienceLevel, payload.CoverType, payload.AdditionalOptions)

	if a.db == nil {
		log.Printf("lead: no database configured; lead from %q not stored", email)
		c.JSON(http.StatusOK, gin.H{
			"stored":  false,
			"monthly": estimate.Monthly,
			"annual":  estimate.Annual,
		})
		return
	}

	leadID := uuid.NewString()
	err := a.db.QueryRow(
		c.Request.Context(),
		`INSERT INTO "QuoteLead" (
			id, name, email, postcode, "teachingType", "experienceLevel",
			"coverType", "additionalOptions", "monthlyLow", "monthlyHigh", "createdAt"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id`,
		leadID,
		name,
		email,
		strings.TrimSpace(payload.Postcode),
		strings.TrimSpace(payload.TeachingType),
		strings.TrimSpace(payload.ExperienceLevel),
		strings.TrimSpace(payload.CoverType),
		payload.AdditionalOptions,
		estimate.Monthly.Low,
		estimate.Monthly.High,
	).Scan(&leadID)
	if err != nil {
		log.Printf("lead: insert failed: %v", err)
		writeError(c, http.StatusInternalServerError, "Failed to store lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lead_id": leadID,
		"stored":  true,
		"monthly": estimate.Monthly,
		"annual":  estimate.Annual,
	})
}
