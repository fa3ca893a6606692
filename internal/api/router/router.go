package router

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"job-match-go/internal/api/handler"
	"job-match-go/internal/processor"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, jobMatchHandler *handler.JobMatchHandler) {
	api := h.Group("/api/v1")

	// 简历文件上传并解析
	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		userID := ctx.PostForm("user_id")

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := resumeHandler.HandleResumeUpload(c, file, fileHeader.Filename, userID)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 简历纯文本解析
	api.POST("/resume/text", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			UserID string `json:"user_id"`
			Text   string `json:"text"`
		}
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}
		if req.Text == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "text不能为空"})
			return
		}

		resp, err := resumeHandler.HandleResumeText(c, req.Text, req.UserID)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 查询用户画像
	api.GET("/profile/:user_id", func(c context.Context, ctx *app.RequestContext) {
		userID := ctx.Param("user_id")
		profile, err := resumeHandler.HandleGetProfile(c, userID)
		if err != nil {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, profile)
	})

	// 岗位匹配
	api.POST("/jobs/match", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobMatchRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		resp, err := jobMatchHandler.HandleJobMatch(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 画像加搜索词的岗位搜索
	api.POST("/search/jobs", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobSearchRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		resp, err := jobMatchHandler.HandleJobSearch(c, &req)
		if err != nil {
			if errors.Is(err, processor.ErrProfileNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
