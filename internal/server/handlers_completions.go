package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

const (
	userIDPrefix         = "membership_"
	fallbackReply        = "I'm having trouble connecting right now. Could you try again in a moment?"
	completionModelTag   = "membership-agent"
	fallbackModelTag     = "membership-clm-fallback"
	voiceSessionIDPrefix = "voice_"
)

type completionRequest struct {
	Messages        []ChatMessage `json:"messages"`
	CustomSessionID string        `json:"custom_session_id"`
	SessionID       string        `json:"session_id"`
}

// sessionIdentity is the three-part composite the voice platform encodes into
// its session id: "displayName|membership_<userId>|pageContext". A string
// without the delimiter carries no identity at all.
type sessionIdentity struct {
	DisplayName string
	UserID      string
	SessionPart string
	PageContext string
}

func parseSessionIdentity(raw string) sessionIdentity {
	if !strings.Contains(raw, "|") {
		return sessionIdentity{}
	}
	parts := strings.Split(raw, "|")

	identity := sessionIdentity{DisplayName: parts[0]}
	if len(parts) > 1 {
		identity.SessionPart = parts[1]
		identity.UserID = strings.TrimPrefix(parts[1], userIDPrefix)
	}
	if len(parts) > 2 {
		identity.PageContext = parts[2]
	}
	return identity
}

func lastUserContent(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// chatCompletions bridges the voice platform onto the marketing agent. The
// caller is a real-time voice session that cannot handle HTTP errors, so every
// failure path still answers 200 with a well-formed completion object.
func (a *App) chatCompletions(c *gin.Context) {
	var payload completionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("clm: invalid request payload: %v", err)
		c.JSON(http.StatusOK, fallbackCompletion())
		return
	}

	rawSessionID := payload.CustomSessionID
	if rawSessionID == "" {
		rawSessionID = payload.SessionID
	}
	identity := parseSessionIdentity(rawSessionID)
	lastUserMessage := lastUserContent(payload.Messages)

	log.Printf("clm: received %q from user=%q id=%q", truncateForLog(lastUserMessage, 100), identity.DisplayName, identity.UserID)

	ctx := c.Request.Context()
	memoryContext := ""
	if identity.UserID != "" {
		memoryContext = a.memory.UserContext(ctx, identity.UserID)
	}

	outbound := make([]ChatMessage, 0, len(payload.Messages)+1)
	outbound = append(outbound, ChatMessage{
		Role:    "system",
		Content: buildVoiceSystemPrompt(identity, memoryContext),
	})
	for _, message := range payload.Messages {
		if message.Role == "system" {
			continue
		}
		outbound = append(outbound, ChatMessage{Role: message.Role, Content: message.Content})
	}

	answer, err := a.agent.Complete(ctx, outbound)
	if err != nil {
		log.Printf("clm: agent call failed: %v", err)
		c.JSON(http.StatusOK, fallbackCompletion())
		return
	}

	log.Printf("clm: agent replied %q", truncateForLog(answer, 100))

	a.persistExchange(ctx, identity, lastUserMessage, answer)

	content := answer
	if content == "" {
		content = greetingFallback(identity.DisplayName)
	}

	c.JSON(http.StatusOK, completionEnvelope(completionModelTag, content, &AIUsage{
		// Raw character counts, not tokenizer output. The voice platform only
		// needs plausible non-zero numbers here.
		PromptTokens:     utf8.RuneCountInString(lastUserMessage),
		CompletionTokens: utf8.RuneCountInString(answer),
		TotalTokens:      utf8.RuneCountInString(lastUserMessage) + utf8.RuneCountInString(answer),
	}))
}

// persistExchange writes the turn back to the memory graph. Best-effort: both
// calls run after the reply text is known and any failure is logged and
// swallowed, never surfaced to the voice platform.
func (a *App) persistExchange(ctx context.Context, identity sessionIdentity, userMessage, assistantMessage string) {
	if identity.UserID == "" || !a.memory.enabled() {
		return
	}

	sessionID := voiceSessionIDPrefix + identity.SessionPart
	page := identity.PageContext
	if page == "" {
		page = "main"
	}
	if err := a.memory.CreateSession(ctx, sessionID, identity.UserID, map[string]any{
		"source": "hume_clm",
		"page":   page,
	}); err != nil {
		log.Printf("clm: session upsert failed: %v", err)
	}

	if err := a.memory.AppendMessages(ctx, sessionID, []zepSessionMessage{
		{RoleType: "user", Content: userMessage},
		{RoleType: "assistant", Content: assistantMessage},
	}); err != nil {
		log.Printf("clm: exchange store failed: %v", err)
	}
}

func buildVoiceSystemPrompt(identity sessionIdentity, memoryContext string) string {
	lines := []string{
		"You are a VOICE CONSULTANT for a specialist Membership Marketing Agency.",
		"You help associations, professional bodies, and membership organisations grow and retain their members.",
		"You are a friendly, knowledgeable membership marketing consultant with a warm, professional personality.",
		"",
	}

	if identity.DisplayName != "" {
		lines = append(lines, "User Name: "+identity.DisplayName)
	} else {
		lines = append(lines, "USER: Guest")
	}
	if identity.UserID != "" {
		lines = append(lines, "User ID: "+identity.UserID)
	}
	if memoryContext != "" {
		lines = append(lines, memoryContext)
	}
	if identity.PageContext != "" {
		lines = append(lines, "", "PAGE CONTEXT: User is on the "+identity.PageContext+" page.")
	}

	nameRule := "Ask for their name if appropriate"
	if identity.DisplayName != "" {
		nameRule = "Address them by name (" + identity.DisplayName + ") occasionally"
	}

	lines = append(lines,
		"",
		"EXPERTISE:",
		"- Member acquisition, retention, engagement",
		"- Membership pricing and proposition",
		"- Content marketing and thought leadership",
		"- Professional bodies, Trade associations, Charities",
		"",
		"KEY STATS:",
		"- Average churn: 15-25% annually",
		"- Engaged members 3x more likely to renew",
		"- Referrals convert at 4x rate of cold leads",
		"",
		"RULES:",
		"1. Keep responses SHORT (2-3 sentences max) for voice",
		"2. Be warm, professional, solution-oriented",
		"3. Ask qualifying questions about their organisation",
		"4. Your goal is to qualify them and book a consultation",
		"5. "+nameRule,
	)
	return strings.Join(lines, "\n")
}

func greetingFallback(displayName string) string {
	name := ""
	if displayName != "" {
		name = " " + displayName
	}
	return "Hi" + name + "! I'm here to help with your membership marketing. What type of organisation are you?"
}

func completionEnvelope(model, content string, usage *AIUsage) gin.H {
	now := time.Now()
	envelope := gin.H{
		"id":      "chatcmpl-" + strconv.FormatInt(now.UnixMilli(), 10),
		"object":  "chat.completion",
		"created": now.Unix(),
		"model":   model,
		"choices": []gin.H{{
			"index": 0,
			"message": gin.H{
				"role":    "assistant",
				"content": content,
			},
			"finish_reason": "stop",
		}},
	}
	if usage != nil {
		envelope["usage"] = gin.H{
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"total_tokens":      usage.TotalTokens,
		}
	}
	return envelope
}

func fallbackCompletion() gin.H {
	return completionEnvelope(fallbackModelTag, fallbackReply, nil)
}
