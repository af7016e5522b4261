package controller

import (
	"errors"
	"net/http"
	"team11_backend/internal/model"
	"team11_backend/internal/service"
	"team11_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type DashboardController struct {
	QueryService *service.QueryService
}

func NewDashboardController(querySvc *service.QueryService) *DashboardController {
	return &DashboardController{QueryService: querySvc}
}

// renderError shows the not-found page for unknown submissions and the
// generic error page for everything else.
func renderError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrSubmissionNotFound) {
		ctx.HTML(http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return
	}
	util.LogError(ctx, err)
	ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Message": "Please try again later.",
	})
}

// Dashboard 当前用户的提交记录
func (c *DashboardController) Dashboard(ctx *gin.Context) {
	items, err := c.QueryService.ListSubmissions(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":       "Dashboard",
		"Submissions": items,
	})
}

// SubmissionDetail 单次提交详情，他人的提交按不存在处理
func (c *DashboardController) SubmissionDetail(ctx *gin.Context) {
	detail, err := c.QueryService.GetSubmissionDetail(ctx.Request.Context(), currentUserID(ctx), ctx.Param("id"))
	if err != nil {
		renderError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "submission_detail.html", gin.H{
		"Title":  "Submission",
		"Detail": detail,
	})
}

// ScoreChart 分数趋势图
func (c *DashboardController) ScoreChart(ctx *gin.Context) {
	points, err := c.QueryService.ScoreTrend(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/html; charset=utf-8")
	if err := scoreTrendChart(points).Render(ctx.Writer); err != nil {
		util.LogError(ctx, err)
	}
}

func scoreTrendChart(points []service.ScorePoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Score trend · Team 11"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Score trend",
			Subtitle: "Writing and speaking submissions",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Min:  0,
			Max:  100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	series := map[model.SubmissionKind][]opts.LineData{
		model.KindWriting:   {},
		model.KindListening: {},
	}
	for _, p := range points {
		series[p.Kind] = append(series[p.Kind], opts.LineData{
			Value: []interface{}{p.At.Format(util.TimeFormat), p.Score},
		})
	}

	line.AddSeries("Writing", series[model.KindWriting]).
		AddSeries("Speaking", series[model.KindListening]).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
