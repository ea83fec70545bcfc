// Package storage хранит загруженные файлы на локальном диске.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound: файл не найден ни по одному из путей.
	ErrNotFound = errors.New("file not found")
	// ErrTooLarge: превышен лимит размера файла.
	ErrTooLarge = errors.New("file too large")
)

// Store — хранилище файлов документов.
type Store interface {
	// Save сохраняет содержимое под новым уникальным именем с расширением исходного файла.
	Save(ctx context.Context, originalName string, r io.Reader) (path string, size int64, err error)
	// Open ищет файл по сохранённому пути с запасными вариантами.
	Open(path string) (*os.File, error)
	// Remove удаляет файл; отсутствие файла не ошибка.
	Remove(path string) error
	Dir() string
}

// Disk — реализация Store поверх файловой системы.
type Disk struct {
	dir     string
	maxSize int64
}

// NewDisk создаёт каталог, если его ещё нет. maxSize <= 0 — без ограничения.
func NewDisk(dir string, maxSize int64) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Disk{dir: dir, maxSize: maxSize}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Save(ctx context.Context, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(d.dir, uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	src := r
	if d.maxSize > 0 {
		src = io.LimitReader(r, d.maxSize+1)
	}
	size, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && d.maxSize > 0 && size > d.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return filepath.ToSlash(path), size, nil
}

// candidates — пути, по которым пробуем найти файл: как сохранён,
// относительно рабочего каталога, в каталоге загрузок по имени файла.
func (d *Disk) candidates(path string) []string {
	list := []string{path}
	if wd, err := os.Getwd(); err == nil {
		list = append(list, filepath.Join(wd, path))
	}
	list = append(list, filepath.Join(d.dir, filepath.Base(path)))
	return list
}

func (d *Disk) Open(path string) (*os.File, error) {
	if path == "" {
		return nil, ErrNotFound
	}
	for _, p := range d.candidates(path) {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		if st, err := f.Stat(); err != nil || st.IsDir() {
			_ = f.Close()
			continue
		}
		return f, nil
	}
	return nil, ErrNotFound
}

func (d *Disk) Remove(path string) error {
	if path == "" {
		return nil
	}
	for _, p := range d.candidates(path) {
		err := os.Remove(p)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
