package handler

import (
	"github.com/gin-gonic/gin"

	"threadsnet/service"
	"threadsnet/utils"
)

type SystemSettingsHandler struct {
	sysSvc *service.SystemSettingsService
}

func NewSystemSettingsHandler(sysSvc *service.SystemSettingsService) *SystemSettingsHandler {
	return &SystemSettingsHandler{
		sysSvc: sysSvc,
	}
}

// GetSystemSettings 获取所有系统配置
// GET /api/admin/settings
func (h *SystemSettingsHandler) GetSystemSettings(c *gin.Context) {
	utils.SuccessResponse(c, "settings", h.sysSvc.GetAllSettings())
}

// UpdateSystemSetting 更新系统配置
// PUT /api/admin/settings/:key
func (h *SystemSettingsHandler) UpdateSystemSetting(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Value *string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	if err := h.sysSvc.UpdateSetting(c.Request.Context(), key, *req.Value); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "setting updated successfully", "setting", gin.H{
		"key":   key,
		"value": *req.Value,
	})
}

// ReloadSystemSettings 重新加载系统配置（从数据库）
// POST /api/admin/settings/reload
func (h *SystemSettingsHandler) ReloadSystemSettings(c *gin.Context) {
	if err := h.sysSvc.LoadSettings(c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "settings reloaded successfully", "settings", h.sysSvc.GetAllSettings())
}
