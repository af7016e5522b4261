package controller

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"team11_backend/internal/model"
	"team11_backend/internal/service"
	"team11_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const saveFailedMessage = "could not save submission"

type SubmissionController struct {
	Service      *service.SubmissionService
	QueryService *service.QueryService
}

func NewSubmissionController(svc *service.SubmissionService, querySvc *service.QueryService) *SubmissionController {
	return &SubmissionController{Service: svc, QueryService: querySvc}
}

// SubmitResponse is the data part of a successful submission.
type SubmitResponse struct {
	SubmissionID string                 `json:"submissionId"`
	Kind         model.SubmissionKind   `json:"kind"`
	Status       model.SubmissionStatus `json:"status"`
	Score        *float64               `json:"score,omitempty"`
	Message      string                 `json:"message"`
}

func newSubmitResponse(sub *model.Submission) SubmitResponse {
	return SubmitResponse{
		SubmissionID: sub.ID,
		Kind:         sub.Kind,
		Status:       sub.Status,
		Score:        sub.OverallScore,
		Message:      "submission received",
	}
}

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	if ve, ok := util.IsValidationError(err); ok {
		util.ValidationFailed(ctx, ve)
		return
	}
	switch {
	case errors.Is(err, util.ErrUnauthenticated):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrSubmissionNotFound):
		util.NotFound(ctx)
	case util.IsPersistenceError(err):
		util.LogError(ctx, err)
		util.Error(ctx, http.StatusInternalServerError, saveFailedMessage)
	default:
		util.LogInternalError(ctx, err)
	}
}

func currentUserID(ctx *gin.Context) uint {
	if user := util.GetUserFromContext(ctx); user != nil {
		return user.UserID
	}
	return 0
}

func bindError(ctx *gin.Context, err error) {
	ve := util.NewValidationError(err, util.FieldError{Field: "body", Error: err.Error()}).(*util.ValidationError)
	util.ValidationFailed(ctx, ve)
}

// @Summary 提交写作
// @Description 提交写作文本并立即返回评分
// @Tags team11
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param body body service.WritingSubmissionRequest true "写作内容"
// @Success 201 {object} util.Response{data=SubmitResponse}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /team11/api/submit-writing/ [post]
func (c *SubmissionController) SubmitWriting(ctx *gin.Context) {
	var req service.WritingSubmissionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		bindError(ctx, err)
		return
	}

	sub, err := c.Service.SubmitWriting(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, newSubmitResponse(sub))
}

// @Summary 提交口语录音
// @Description multipart 上传 audio 文件，或 JSON 传 audio_url
// @Tags team11
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param topic_id formData string true "题目ID"
// @Param audio formData file false "录音文件"
// @Param duration_seconds formData number false "录音时长(秒)"
// @Success 201 {object} util.Response{data=SubmitResponse}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /team11/api/submit-listening/ [post]
func (c *SubmissionController) SubmitListening(ctx *gin.Context) {
	var req service.ListeningSubmissionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		bindError(ctx, err)
		return
	}

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fileHeader, err := ctx.FormFile("audio")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			bindError(ctx, err)
			return
		}
		if fileHeader != nil {
			file, err := fileHeader.Open()
			if err != nil {
				util.LogInternalError(ctx, err)
				return
			}
			defer file.Close()
			req.Audio = audioUpload(file, fileHeader)
		}
	}

	sub, err := c.Service.SubmitListening(ctx.Request.Context(), currentUserID(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, newSubmitResponse(sub))
}

func audioUpload(file multipart.File, header *multipart.FileHeader) *service.AudioUpload {
	return &service.AudioUpload{
		File:     file,
		Filename: header.Filename,
		Size:     header.Size,
	}
}

// @Summary 我的提交列表
// @Tags team11
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /team11/api/submissions/ [get]
func (c *SubmissionController) ListSubmissions(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))

	items, total, err := c.QueryService.ListSubmissionsPage(ctx.Request.Context(), currentUserID(ctx), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 提交详情
// @Tags team11
// @Produce json
// @Security BearerAuth
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response{data=service.SubmissionDetail}
// @Failure 404 {object} util.Response
// @Router /team11/api/submissions/{id}/ [get]
func (c *SubmissionController) GetSubmission(ctx *gin.Context) {
	detail, err := c.QueryService.GetSubmissionDetail(ctx.Request.Context(), currentUserID(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 连通性检查
// @Tags team11
// @Produce json
// @Success 200 {object} util.Response
// @Router /team11/ping/ [get]
func (c *SubmissionController) Ping(ctx *gin.Context) {
	util.Success(ctx, gin.H{"team": util.TeamName, "ok": true})
}
