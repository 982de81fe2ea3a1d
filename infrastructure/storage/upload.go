// Package storage grava os arquivos enviados, um diretório por execução
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/rfm-segmentation-api/pkg/utils"
)

// ErrFileTooLarge indica que o upload passou do limite configurado
var ErrFileTooLarge = errors.New("uploaded file exceeds size limit")

// Run é o diretório de uma execução do pipeline
type Run struct {
	ID        string
	Dir       string // Caminho no disco
	PublicDir string // Caminho relativo usado nas URLs
}

type UploadStore struct {
	baseDir      string
	publicPrefix string
	maxBytes     int64
}

func NewUploadStore(baseDir, publicPrefix string, maxBytes int64) *UploadStore {
	return &UploadStore{
		baseDir:      baseDir,
		publicPrefix: publicPrefix,
		maxBytes:     maxBytes,
	}
}

// NewRun cria um diretório exclusivo para a execução; dois uploads nunca
// compartilham o mesmo destino.
func (s *UploadStore) NewRun() (*Run, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, errors.Wrap(err, "generate run id")
	}

	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create run dir %s", dir)
	}

	return &Run{
		ID:        id,
		Dir:       dir,
		PublicDir: path.Join(s.publicPrefix, id),
	}, nil
}

// RunDir devolve o diretório de uma execução existente
func (s *UploadStore) RunDir(id string) string {
	return filepath.Join(s.baseDir, filepath.Base(id))
}

// Save grava o conteúdo em run.Dir com o nome base do arquivo enviado
func (s *UploadStore) Save(run *Run, fileName string, content io.Reader) (string, error) {
	name := SanitizeFileName(fileName)
	if name == "" {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}

	dest := filepath.Join(run.Dir, name)
	file, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", dest)
	}
	defer file.Close()

	written, err := io.Copy(file, io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return "", errors.Wrapf(err, "write %s", dest)
	}
	if written > s.maxBytes {
		_ = os.Remove(dest)
		return "", errors.Wrapf(ErrFileTooLarge, "limit %d bytes", s.maxBytes)
	}

	return dest, nil
}

// Remove apaga o diretório da execução e tudo dentro dele
func (s *UploadStore) Remove(dir string) error {
	clean := filepath.Clean(dir)
	base := filepath.Clean(s.baseDir)
	if clean == base || !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s outside %s", dir, s.baseDir)
	}
	return os.RemoveAll(clean)
}

// SanitizeFileName mantém apenas o nome base, sem diretórios
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
