// Package watcher следит за файлами шаблона и данных и сообщает об изменениях
// пачками после паузы (debounce).
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler получает список изменившихся файлов одной пачкой.
type ChangeHandler func(paths []string) error

// FileWatcher наблюдает за конкретными файлами. Подписка идёт на их директории:
// редакторы часто сохраняют через rename, и наблюдение за самим файлом теряется.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	delay   time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// New создаёт наблюдатель с заданной паузой между последним событием и вызовом обработчика.
func New(delay time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		watcher: w,
		delay:   delay,
		logger:  logger,
		files:   map[string]struct{}{},
		dirs:    map[string]struct{}{},
	}, nil
}

// Add добавляет файл к наблюдению.
func (fw *FileWatcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("путь %s: %w", path, err)
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.files[abs] = struct{}{}
	dir := filepath.Dir(abs)
	if _, ok := fw.dirs[dir]; ok {
		return nil
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("наблюдение за %s: %w", dir, err)
	}
	fw.dirs[dir] = struct{}{}
	return nil
}

func (fw *FileWatcher) watched(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, ok := fw.files[abs]
	return ok
}

// Run обрабатывает события до отмены ctx, затем закрывает наблюдатель.
// Ошибка обработчика логируется и наблюдение продолжается.
func (fw *FileWatcher) Run(ctx context.Context, handler ChangeHandler) error {
	defer fw.watcher.Close()

	timer := time.NewTimer(fw.delay)
	timer.Stop()
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !fw.watched(ev.Name) {
				continue
			}
			fw.logger.Debug("изменение файла", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = struct{}{}
			timer.Reset(fw.delay)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("ошибка наблюдателя", "error", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = map[string]struct{}{}
			if err := handler(paths); err != nil {
				fw.logger.Error("обработка изменений", "error", err)
			}
		}
	}
}
