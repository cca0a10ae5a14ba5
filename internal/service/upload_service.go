package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"pinboard/internal/auth"
	"pinboard/internal/middleware"
	"pinboard/internal/models"
)

// allowedExtensions is the fixed allow-set for image uploads.
var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// timestampLayout yields the YYYYMMDD_HHMMSS collision-avoidance prefix.
const timestampLayout = "20060102_150405"

// UploadService validates and persists image uploads under the public static
// root. It performs no size check; the transport's body limit caps payloads.
type UploadService struct {
	uploadDir string
	publicURL string
	now       func() time.Time
}

type UploadInput struct {
	Identity *auth.Identity
	Filename string
	Content  []byte
}

func NewUploadService(uploadDir, publicURL string) *UploadService {
	return &UploadService{
		uploadDir: uploadDir,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Upload writes the file and returns its publicly resolvable reference path.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (string, error) {
	if in.Identity == nil {
		return "", models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(in.Filename) == "" || len(in.Content) == 0 {
		return "", models.NewNoFileError()
	}

	ext := extensionOf(in.Filename)
	if _, ok := allowedExtensions[ext]; !ok {
		return "", models.NewUnsupportedTypeError(ext)
	}

	safe := sanitizeFilename(in.Filename)
	if safe == "" {
		safe = "upload." + ext
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}

	prefix := s.now().Format(timestampLayout) + "_"
	name, err := s.reserveName(prefix, safe)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(s.uploadDir, name), in.Content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "file uploaded",
		slog.Any("user_id", in.Identity.UserID),
		slog.String("name", name),
		slog.Int("bytes", len(in.Content)))

	return s.publicURL + "/" + name, nil
}

// reserveName finds an unused target name. The timestamp prefix keeps most
// names unique; same-second uploads of the same file get a numeric suffix.
func (s *UploadService) reserveName(prefix, safe string) (string, error) {
	name := prefix + safe
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(s.uploadDir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", models.NewInternalError(err)
		}
		name = fmt.Sprintf("%s%d_%s", prefix, i, safe)
	}
}

// extensionOf returns the lower-cased text after the final dot, or "" when
// the name has no extension.
func extensionOf(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// sanitizeFilename strips directory components and anything outside a
// conservative character set, then drops leading dots so the result can never
// escape the upload directory or hide as a dotfile.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, "._")
	return base
}
