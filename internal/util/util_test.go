package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	TopicID string `json:"topic_id" form:"topic_id" validate:"required"`
	Text    string `json:"text" validate:"required,notblank"`
	Count   int    `json:"count" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{TopicID: "T1", Text: "x"}))

	err := ValidateStruct(&sample{Text: "   ", Count: -1})
	ve, ok := IsValidationError(err)
	require.True(t, ok)

	msgs := ve.FieldMessages()
	assert.Equal(t, "topic_id is a required field", msgs["topic_id"])
	assert.Equal(t, "text must not be blank", msgs["text"])
	assert.Contains(t, msgs, "count")
	assert.Equal(t, JoinFieldErrors(ve.Fields), ve.Error())
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("submit: %w", NewPersistenceError("save writing submission", cause))
	assert.True(t, IsPersistenceError(err))
	assert.ErrorIs(t, err, cause)
	_, ok := IsValidationError(err)
	assert.False(t, ok)

	ve := NewValidationError(ErrMissingAudio, FieldError{Field: "audio", Error: "audio is required"})
	assert.ErrorIs(t, ve, ErrMissingAudio)
	assert.False(t, IsPersistenceError(ve))
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestSniffAudio(t *testing.T) {
	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	r := bytes.NewReader(wav)

	ct, err := SniffAudio(r)
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", ct)

	// the reader is rewound for the upload
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, wav, rest)

	_, err = SniffAudio(bytes.NewReader([]byte("just some text")))
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
}

func TestAudioExtension(t *testing.T) {
	assert.Equal(t, ".webm", AudioExtension("recording.WEBM", "video/webm"))
	assert.Equal(t, ".wav", AudioExtension("blob", "audio/wav"))
	assert.Equal(t, ".bin", AudioExtension("blob", "application/x-unknown-thing"))
}

func TestParseProbeOutput(t *testing.T) {
	info, err := parseProbeOutput(`{
		"streams": [
			{"codec_type": "video", "codec_name": "vp8"},
			{"codec_type": "audio", "codec_name": "opus", "sample_rate": "48000", "channels": 1}
		],
		"format": {"duration": "4.250000"}
	}`)
	require.NoError(t, err)
	assert.Equal(t, "opus", info.Codec)
	assert.Equal(t, 48000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 4.25, info.Duration)

	_, err = parseProbeOutput(`{"streams": [{"codec_type": "video"}]}`)
	assert.ErrorIs(t, err, ErrUnsupportedAudio)

	_, err = parseProbeOutput(`not json`)
	assert.Error(t, err)
}

func TestParsePage(t *testing.T) {
	page, limit := ParsePage("", "")
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultLimit, limit)

	page, limit = ParsePage("3", "1000")
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxLimit, limit)

	page, _ = ParsePage("-2", "x")
	assert.Equal(t, DefaultPage, page)

	assert.Equal(t, 0, ParseIndex("abc"))
	assert.Equal(t, 2, ParseIndex("2"))
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestParseJWT(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	valid := signToken(t, jwt.SigningMethodHS256, []byte(secret), &Claims{
		UserID:           12,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})

	claims, err := ParseJWT(valid, secret)
	require.NoError(t, err)
	assert.EqualValues(t, 12, claims.UserID)

	_, err = ParseJWT(valid, "another-secret")
	assert.Error(t, err)

	expired := signToken(t, jwt.SigningMethodHS256, []byte(secret), &Claims{
		UserID:           12,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	anonymous := signToken(t, jwt.SigningMethodHS256, []byte(secret), &Claims{})
	_, err = ParseJWT(anonymous, secret)
	assert.Error(t, err)

	unsigned := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &Claims{UserID: 12})
	_, err = ParseJWT(unsigned, secret)
	assert.Error(t, err)
}
