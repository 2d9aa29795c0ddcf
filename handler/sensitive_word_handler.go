package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"threadsnet/service"
	"threadsnet/utils"
)

type SensitiveWordHandler struct {
	moderation *service.ModerationService
}

func NewSensitiveWordHandler(moderation *service.ModerationService) *SensitiveWordHandler {
	return &SensitiveWordHandler{moderation: moderation}
}

// GetSensitiveWords GET /api/sensitiveWord/getSensitiveWords
func (h *SensitiveWordHandler) GetSensitiveWords(c *gin.Context) {
	words, err := h.moderation.ListWords(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "words", words)
}

// AddSensitiveWords POST /api/sensitiveWord/addSensitiveWords
func (h *SensitiveWordHandler) AddSensitiveWords(c *gin.Context) {
	var req struct {
		Words []string `json:"words"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "words must be a non-empty array")
		return
	}
	words, err := h.moderation.AddWords(c.Request.Context(), req.Words)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "Sensitive words updated successfully", "words", words)
}

// DeleteSensitiveWord DELETE /api/sensitiveWord/deleteSensitiveWord
func (h *SensitiveWordHandler) DeleteSensitiveWord(c *gin.Context) {
	var req struct {
		Word string `json:"word"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "word is required")
		return
	}
	words, err := h.moderation.DeleteWord(c.Request.Context(), req.Word)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, fmt.Sprintf("Word '%s' has been removed successfully", req.Word), "words", words)
}
