package controller

import (
	"net/http"
	"team11_backend/internal/model"
	"team11_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ExamController serves the static landing and exam pages.
type ExamController struct{}

func NewExamController() *ExamController {
	return &ExamController{}
}

func (c *ExamController) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", gin.H{"Title": "Home"})
}

func (c *ExamController) StartExam(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "start_exam.html", gin.H{
		"Title":           "Start exam",
		"WritingTopics":   model.WritingTopics,
		"ListeningTopics": model.ListeningTopics,
	})
}

// WritingExam 按 ?topic= 下标选题，越界时回退到第一题
func (c *ExamController) WritingExam(ctx *gin.Context) {
	topic, index := model.TopicAt(model.KindWriting, util.ParseIndex(ctx.Query("topic")))
	ctx.HTML(http.StatusOK, "writing_exam.html", gin.H{
		"Title": "Writing exam",
		"Topic": topic,
		"Index": index,
	})
}

func (c *ExamController) ListeningExam(ctx *gin.Context) {
	topic, index := model.TopicAt(model.KindListening, util.ParseIndex(ctx.Query("topic")))
	ctx.HTML(http.StatusOK, "listening_exam.html", gin.H{
		"Title": "Speaking exam",
		"Topic": topic,
		"Index": index,
	})
}
