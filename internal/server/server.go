// Package server provides the HTTP boundary: one stateless chat endpoint
// that runs a single conversation turn per request, plus health and CORS
// wiring.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danbita/jira-cloud-api/internal/conversation"
	"github.com/danbita/jira-cloud-api/internal/logging"
	"github.com/danbita/jira-cloud-api/pkg/models"
)

// IssueService is the downstream tracker capability the server dispatches
// creation and search actions to.
type IssueService interface {
	CreateIssue(ctx context.Context, d models.IssueDescriptor) models.CreationResult
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Server wires the conversation controller and the tracker capability
// behind a gin router.
type Server struct {
	router     *gin.Engine
	controller *conversation.Controller
	issues     IssueService
	origins    string
}

// ChatRequest is the inbound payload. Malformed input (missing, empty or
// oversized message) is rejected here, before the conversation core runs.
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ChatResponse is the outbound payload. Exactly one of Issue and Results
// is populated, depending on the action.
type ChatResponse struct {
	RequestID string                 `json:"requestId"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	Issue     *models.CreationResult `json:"issue,omitempty"`
	Results   []models.SearchResult  `json:"results,omitempty"`
}

// New creates a Server with its routes registered.
func New(controller *conversation.Controller, issues IssueService, allowedOrigins string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:     router,
		controller: controller,
		issues:     issues,
		origins:    allowedOrigins,
	}

	router.Use(s.corsMiddleware())
	router.GET("/health", s.handleHealth)
	router.POST("/api/chat", s.handleChat)

	return s
}

// Run starts the HTTP server on the given port and blocks.
func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleChat runs exactly one conversation turn. The conversation state
// is created fresh for the request and discarded with it; nothing is
// shared across requests.
func (s *Server) handleChat(c *gin.Context) {
	requestID := uuid.NewString()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logging.Warn("rejected chat request", "request_id", requestID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"requestId": requestID,
			"error":     "message is required and must be at most 2000 characters",
		})
		return
	}

	state := conversation.NewState()
	action := s.controller.HandleMessage(c.Request.Context(), state, req.Message)
	resp := s.dispatch(c.Request.Context(), requestID, action)

	logging.Info("chat turn handled", "request_id", requestID, "action", resp.Action)
	c.JSON(http.StatusOK, resp)
}

// dispatch executes whatever the controller decided: creation and search
// call out to the tracker, everything else is answered directly.
func (s *Server) dispatch(ctx context.Context, requestID string, action conversation.Action) ChatResponse {
	resp := ChatResponse{RequestID: requestID}

	switch a := action.(type) {
	case conversation.CreateIssue:
		result := s.issues.CreateIssue(ctx, a.Descriptor)
		if !result.Success {
			resp.Action = "error"
			resp.Message = fmt.Sprintf("I couldn't create the issue: %s", result.Error)
			resp.Issue = &result
			return resp
		}
		resp.Action = "create_issue"
		resp.Message = fmt.Sprintf("Created %s: %s (%s)", result.Key, result.Summary, result.URL)
		resp.Issue = &result

	case conversation.Search:
		results, err := s.issues.Search(ctx, a.Query)
		if err != nil {
			resp.Action = "error"
			resp.Message = fmt.Sprintf("Search failed: %v", err)
			return resp
		}
		resp.Action = "search"
		resp.Results = results
		if len(results) == 0 {
			resp.Message = fmt.Sprintf("No issues found for %q.", a.Query)
		} else {
			resp.Message = fmt.Sprintf("Found %d issue(s) for %q.", len(results), a.Query)
		}

	case conversation.Continue:
		resp.Action = "continue"
		resp.Message = a.Prompt

	case conversation.Cancel:
		resp.Action = "cancel"
		resp.Message = a.Message

	case conversation.RegularChat:
		resp.Action = "regular_chat"
		resp.Message = "I can create and search issues for you. Try something like: " +
			`Create a bug in FV Engineering called "Login button not working" ` +
			`with description "Users cannot authenticate on mobile devices".`

	case conversation.ErrorAction:
		resp.Action = "error"
		resp.Message = a.Message
	}

	return resp
}

// corsMiddleware applies the configured origin policy and answers
// preflight requests.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	allowed := strings.Split(s.origins, ",")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			for _, o := range allowed {
				o = strings.TrimSpace(o)
				if o == "*" || strings.EqualFold(o, origin) {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					c.Header("Access-Control-Allow-Headers", "Content-Type")
					break
				}
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
