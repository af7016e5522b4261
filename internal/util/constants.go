package util

const TimeFormat = "2006-01-02 15:04:05"

const TeamName = "team11"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
	StorageS3    = "s3"
)

// 文件上传相关常量
const (
	MimeAudio = "audio/"
	MimeWebM  = "video/webm"
	MimeOgg   = "application/ogg"
)

var (
	// 浏览器录音通常是 webm/ogg 容器
	AllowedAudioTypes      = []string{MimeAudio, MimeWebM, MimeOgg}
	AllowedAudioExtensions = []string{".mp3", ".wav", ".ogg", ".oga", ".webm", ".m4a", ".aac", ".flac"}
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)
