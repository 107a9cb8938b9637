package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/dag-engine/pkg/api/dto"
	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
)

// WorkflowHandler Workflow相关处理器
type WorkflowHandler struct {
	engine *engine.Engine
}

// NewWorkflowHandler 创建WorkflowHandler
func NewWorkflowHandler(eng *engine.Engine) *WorkflowHandler {
	return &WorkflowHandler{engine: eng}
}

// List 列出所有已加载的workflow
// GET /api/v1/workflows
func (h *WorkflowHandler) List(c *gin.Context) {
	ids := h.engine.WorkflowIDs()
	summaries := make([]dto.WorkflowSummary, 0, len(ids))
	for _, id := range ids {
		wf, ok := h.engine.Workflow(id)
		if !ok {
			continue
		}
		def := wf.Definition()
		summaries = append(summaries, dto.WorkflowSummary{
			WorkflowID:  def.WorkflowID,
			Description: def.Description,
			TaskCount:   len(def.Tasks),
			CronExpr:    def.Cron,
		})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(summaries))
}

// Get 查看workflow详情
// GET /api/v1/workflows/:id
func (h *WorkflowHandler) Get(c *gin.Context) {
	wf, ok := h.engine.Workflow(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "workflow不存在"))
		return
	}
	def := wf.Definition()
	tasks := make([]dto.TaskSummary, 0, len(def.Tasks))
	for _, t := range def.Tasks {
		tasks = append(tasks, dto.TaskSummary{
			TaskID:       t.TaskID,
			JobID:        t.JobID,
			Params:       t.Params,
			Dependencies: t.Dependencies,
		})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.WorkflowDetail{
		WorkflowSummary: dto.WorkflowSummary{
			WorkflowID:  def.WorkflowID,
			Description: def.Description,
			TaskCount:   len(def.Tasks),
			CronExpr:    def.Cron,
		},
		Tasks: tasks,
	}))
}

// Upload 上传YAML配置并加载其中的workflow
// POST /api/v1/workflows
func (h *WorkflowHandler) Upload(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求体无效: "+err.Error()))
		return
	}
	cfg, err := config.Parse([]byte(req.Config))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	if err := h.engine.LoadConfig(cfg); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]int{
		"loaded": len(cfg.Workflows),
	}))
}

// Execute 同步执行一次workflow
// POST /api/v1/workflows/:id/execute
func (h *WorkflowHandler) Execute(c *gin.Context) {
	workflowID := c.Param("id")
	if _, ok := h.engine.Workflow(workflowID); !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(404, "workflow不存在"))
		return
	}
	var req dto.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "请求体无效: "+err.Error()))
		return
	}

	// 同步执行：执行失败不算请求失败，结果在RunRecord里
	record, _ := h.engine.RunWorkflow(c.Request.Context(), workflowID, req.Params)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(record))
}
