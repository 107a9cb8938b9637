package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/dag-engine/pkg/api/dto"
	"github.com/LENAX/dag-engine/pkg/storage"
)

// RunHandler 运行历史处理器
// 依赖RunRepository，未配置存储时所有路由返回404
type RunHandler struct {
	repo storage.RunRepository
}

// NewRunHandler 创建RunHandler
func NewRunHandler(repo storage.RunRepository) *RunHandler {
	return &RunHandler{repo: repo}
}

func (h *RunHandler) ensureRepo(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "未配置运行历史存储"))
		return false
	}
	return true
}

// List 最近的执行记录
// GET /api/v1/runs?limit=20
func (h *RunHandler) List(c *gin.Context) {
	if !h.ensureRepo(c) {
		return
	}
	limit := parseLimit(c.DefaultQuery("limit", "20"))
	records, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(records))
}

// Get 按运行ID查询
// GET /api/v1/runs/:id
func (h *RunHandler) Get(c *gin.Context) {
	if !h.ensureRepo(c) {
		return
	}
	record, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(record))
}

// History 某个workflow的执行历史
// GET /api/v1/workflows/:id/history?limit=20
func (h *RunHandler) History(c *gin.Context) {
	if !h.ensureRepo(c) {
		return
	}
	limit := parseLimit(c.DefaultQuery("limit", "20"))
	records, err := h.repo.ListByWorkflow(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(records))
}

func parseLimit(s string) int {
	limit, err := strconv.Atoi(s)
	if err != nil || limit <= 0 || limit > 1000 {
		return 20
	}
	return limit
}
