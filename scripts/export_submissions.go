// 导出某个用户的全部提交及评分，输出为 YAML
//
// 用法: go run scripts/export_submissions.go -user 42 [-out report.yaml]

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"team11_backend/internal/config"
	"team11_backend/internal/repository"
	"team11_backend/internal/service"
	"team11_backend/pkg/database"
	"team11_backend/pkg/logger"
	"time"

	"gopkg.in/yaml.v3"
)

type exportedSubmission struct {
	ID          string    `yaml:"id"`
	Kind        string    `yaml:"kind"`
	Status      string    `yaml:"status"`
	Topic       string    `yaml:"topic"`
	Score       *float64  `yaml:"score,omitempty"`
	Text        string    `yaml:"text,omitempty"`
	AudioURL    string    `yaml:"audio_url,omitempty"`
	Feedback    string    `yaml:"feedback,omitempty"`
	Suggestions []string  `yaml:"suggestions,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
}

type export struct {
	UserID      uint                 `yaml:"user_id"`
	ExportedAt  time.Time            `yaml:"exported_at"`
	Submissions []exportedSubmission `yaml:"submissions"`
}

func main() {
	userID := flag.Uint("user", 0, "用户ID")
	out := flag.String("out", "", "输出文件，默认标准输出")
	configDir := flag.String("config", "configs", "配置目录")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("必须指定 -user")
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, logger.Log, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	query := service.NewQueryService(repository.NewSubmissionRepository(db), nil)
	ctx := context.Background()

	items, err := query.ListSubmissions(ctx, uint(*userID))
	if err != nil {
		log.Fatalf("查询提交失败: %v", err)
	}

	report := export{UserID: uint(*userID), ExportedAt: time.Now()}
	for _, it := range items {
		d, err := query.GetSubmissionDetail(ctx, uint(*userID), it.ID)
		if err != nil {
			log.Fatalf("查询提交 %s 失败: %v", it.ID, err)
		}
		row := exportedSubmission{
			ID:          it.ID,
			Kind:        string(it.Kind),
			Status:      string(it.Status),
			Topic:       d.Topic.Prompt,
			Score:       it.Score,
			Suggestions: d.Suggestions,
			CreatedAt:   it.CreatedAt,
		}
		if d.Writing != nil {
			row.Text = d.Writing.Text
		}
		if d.Listening != nil {
			row.AudioURL = d.Listening.AudioURL
		}
		if d.Result != nil {
			row.Feedback = d.Result.Feedback
		}
		report.Submissions = append(report.Submissions, row)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("无法创建输出文件: %v", err)
		}
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	if err := enc.Close(); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	log.Printf("已导出 %d 条提交", len(report.Submissions))
}
