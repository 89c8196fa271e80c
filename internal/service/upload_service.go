package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/crosspost/internal/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var allowedUploadTypes = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "mp4": {}, "mov": {}, "webp": {},
}

// UploadService stages uploaded media on local disk until it is posted.
type UploadService interface {
	Save(files []*multipart.FileHeader) ([]models.MediaFile, error)
	Dir() string
}

type uploadService struct {
	dir string
}

func NewUploadService(dir string) (UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &uploadService{dir: dir}, nil
}

func (s *uploadService) Dir() string {
	return s.dir
}

// Save stores every file as <id>_<name>. Files whose content is not an
// allowed image or video type are skipped.
func (s *uploadService) Save(files []*multipart.FileHeader) ([]models.MediaFile, error) {
	var saved []models.MediaFile
	for _, fh := range files {
		mf, err := s.save(fh)
		if err != nil {
			slog.Warn("upload rejected", "file", fh.Filename, "error", err)
			continue
		}
		saved = append(saved, *mf)
	}

	if len(saved) == 0 {
		return nil, errors.New("no valid files uploaded")
	}
	return saved, nil
}

func (s *uploadService) save(fh *multipart.FileHeader) (*models.MediaFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	kind, err := filetype.Match(content)
	if err != nil || kind == filetype.Unknown {
		return nil, errors.New("unsupported file type")
	}
	if _, ok := allowedUploadTypes[kind.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", kind.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s_%s", id, sanitizeFilename(fh.Filename))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("error saving file: %w", err)
	}

	return &models.MediaFile{
		Name: fh.Filename,
		Path: path,
		Size: int64(len(content)),
		Type: kind.MIME.Value,
	}, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
