package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pinboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewUploadService(dir, "/static/uploads")
	svc.now = func() time.Time {
		return time.Date(2026, 5, 14, 10, 30, 0, 0, time.UTC)
	}
	return svc, dir
}

func TestUploadService_Upload(t *testing.T) {
	svc, dir := newTestUploadService(t)

	url, err := svc.Upload(context.Background(), UploadInput{
		Identity: testIdentity(1),
		Filename: "photo.png",
		Content:  []byte("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/20260514_103000_photo.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "20260514_103000_photo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestUploadService_Upload_Anonymous(t *testing.T) {
	svc, _ := newTestUploadService(t)

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "photo.png",
		Content:  []byte("x"),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, appErrCode(t, err))
}

func TestUploadService_Upload_NoFile(t *testing.T) {
	svc, _ := newTestUploadService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Identity: testIdentity(1), Filename: "", Content: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, models.CodeNoFile, appErrCode(t, err))

	_, err = svc.Upload(ctx, UploadInput{Identity: testIdentity(1), Filename: "a.png", Content: nil})
	require.Error(t, err)
	assert.Equal(t, models.CodeNoFile, appErrCode(t, err))
}

func TestUploadService_Upload_UnsupportedType(t *testing.T) {
	svc, _ := newTestUploadService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
	}{
		{"executable", "malware.exe"},
		{"no extension", "README"},
		{"trailing dot", "weird."},
		{"traversal without image extension", "../../etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, UploadInput{
				Identity: testIdentity(1),
				Filename: tt.filename,
				Content:  []byte("x"),
			})
			require.Error(t, err)
			assert.Equal(t, models.CodeUnsupportedType, appErrCode(t, err))
		})
	}
}

func TestUploadService_Upload_SanitizesTraversal(t *testing.T) {
	svc, dir := newTestUploadService(t)

	url, err := svc.Upload(context.Background(), UploadInput{
		Identity: testIdentity(1),
		Filename: "../../sneaky dir/..\\evil name!.PNG",
		Content:  []byte("x"),
	})
	require.NoError(t, err)

	// The stored file stays inside the upload directory and keeps only safe
	// characters.
	name := strings.TrimPrefix(url, "/static/uploads/")
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "\\")
	assert.NotContains(t, name, " ")
	assert.True(t, strings.HasPrefix(name, "20260514_103000_"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name())
}

func TestUploadService_Upload_SameSecondCollision(t *testing.T) {
	svc, dir := newTestUploadService(t)
	ctx := context.Background()
	in := UploadInput{
		Identity: testIdentity(1),
		Filename: "pic.jpg",
		Content:  []byte("x"),
	}

	first, err := svc.Upload(ctx, in)
	require.NoError(t, err)
	second, err := svc.Upload(ctx, in)
	require.NoError(t, err)
	third, err := svc.Upload(ctx, in)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestUploadService_AllowedExtensionsCaseInsensitive(t *testing.T) {
	svc, _ := newTestUploadService(t)
	ctx := context.Background()

	for _, name := range []string{"a.PNG", "b.Jpg", "c.JPEG", "d.gif", "e.WEBP"} {
		_, err := svc.Upload(ctx, UploadInput{
			Identity: testIdentity(1),
			Filename: name,
			Content:  []byte("x"),
		})
		assert.NoError(t, err, "extension of %s should be accepted", name)
	}
}
