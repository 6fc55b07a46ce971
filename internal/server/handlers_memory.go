package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const memoryProfileQuery = "user organisation membership challenges goals services acquisition retention engagement strategy"

// memoryContext returns what the memory graph remembers about a visitor,
// grouped for display next to the chat widget. Missing user id, missing API
// key or an upstream failure all yield the same empty 200 response.
func (a *App) memoryContext(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" || !a.memory.enabled() {
		c.JSON(http.StatusOK, emptyMemoryContext())
		return
	}

	edges, err := a.memory.SearchFacts(c.Request.Context(), userID, memoryProfileQuery, 15)
	if err != nil {
		log.Printf("memory: graph search failed: %v", err)
		c.JSON(http.StatusOK, emptyMemoryContext())
		return
	}

	facts := make([]string, 0, len(edges))
	for _, edge := range edges {
		if strings.TrimSpace(edge.Fact) == "" {
			continue
		}
		facts = append(facts, edge.Fact)
	}

	categorized, entities := groupFacts(facts)
	c.JSON(http.StatusOK, gin.H{
		"context":  entityContext(entities),
		"facts":    categorized,
		"entities": entities,
	})
}

func emptyMemoryContext() gin.H {
	return gin.H{
		"context": "",
		"facts":   []categorizedFact{},
		"entities": factEntities{
			Organisations: []string{},
			Challenges:    []string{},
			Goals:         []string{},
			Services:      []string{},
			Preferences:   []string{},
		},
	}
}
