package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/render"
	"mindful-chat/internal/service"
)

// CommunityHandler expone las preguntas y respuestas de la comunidad.
type CommunityHandler struct {
	logger    *zap.Logger
	community *service.CommunityService
}

func NewCommunityHandler(logger *zap.Logger, community *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{
		logger:    logger,
		community: community,
	}
}

type postView struct {
	domain.Post
	ContentHTML string `json:"content_html"`
}

type answerView struct {
	domain.Answer
	ContentHTML string `json:"content_html"`
}

// ListPosts maneja GET /community.
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	posts, err := h.community.ListLatest(c.Request.Context())
	if err != nil {
		h.renderError(c, err, "Failed to load community posts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost maneja GET /community/:id.
func (h *CommunityHandler) GetPost(c *gin.Context) {
	detail, err := h.community.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "Failed to load question")
		return
	}

	answers := make([]answerView, 0, len(detail.Answers))
	for _, a := range detail.Answers {
		answers = append(answers, answerView{Answer: a, ContentHTML: render.MessageHTML(a.Content)})
	}
	c.JSON(http.StatusOK, gin.H{
		"post":    postView{Post: detail.Post, ContentHTML: render.MessageHTML(detail.Post.Content)},
		"answers": answers,
	})
}

// CreatePost maneja POST /community.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	session, _ := GetSession(c)
	var req struct {
		Title   string   `json:"title" form:"title"`
		Content string   `json:"content" form:"content"`
		Tags    []string `json:"tags" form:"tags"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid create post request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	post, err := h.community.CreatePost(c.Request.Context(), session.UserID, req.Title, req.Content, req.Tags)
	if err != nil {
		h.renderError(c, err, "Failed to create question")
		return
	}

	c.Redirect(http.StatusSeeOther, "/community/"+post.ID)
}

// CreateAnswer maneja POST /community/:id/answers.
func (h *CommunityHandler) CreateAnswer(c *gin.Context) {
	session, _ := GetSession(c)
	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid create answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	postID := c.Param("id")
	if _, err := h.community.CreateAnswer(c.Request.Context(), postID, session.UserID, req.Content); err != nil {
		h.renderError(c, err, "Failed to add answer")
		return
	}

	c.Redirect(http.StatusSeeOther, "/community/"+postID)
}

// MarkSolution maneja POST /community/answers/:id/solution.
func (h *CommunityHandler) MarkSolution(c *gin.Context) {
	session, _ := GetSession(c)
	answer, err := h.community.MarkSolution(c.Request.Context(), c.Param("id"), session.UserID)
	if err != nil {
		h.renderError(c, err, "Failed to mark solution")
		return
	}

	c.Redirect(http.StatusSeeOther, "/community/"+answer.PostID)
}

func (h *CommunityHandler) renderError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("community request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": domain.MessageOf(err, fallback)})
}
