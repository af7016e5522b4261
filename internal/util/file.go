package util

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffAudio 深度校验上传音频的 MIME 类型，校验后把读取位置重置到开头
func SniffAudio(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	ct := baseMime(mtype.String())
	if !IsAudio(ct) {
		return ct, ErrUnsupportedAudio
	}
	return ct, nil
}

// IsAudio 检测是否为可接受的录音类型
func IsAudio(mimeType string) bool {
	for _, allowed := range AllowedAudioTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return true
		}
	}
	return false
}

// AudioExtension picks a file extension for the stored object.
func AudioExtension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedAudioExtensions {
		if ext == allowed {
			return ext
		}
	}
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}

func baseMime(s string) string {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return s
}
