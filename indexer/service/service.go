// Package service runs the offline indexing job, either once or as a
// long-lived watcher that rebuilds the index when the source folder changes.
package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"ragchat/index"
	"ragchat/model"
)

// rebuildDelay coalesces bursts of filesystem events (editors write files in
// several steps) into one rebuild.
const rebuildDelay = 2 * time.Second

type Service struct {
	logger    *slog.Logger
	embedder  model.Embedder
	srcDir    string
	indexPath string
}

func New(embedder model.Embedder, srcDir, indexPath string) *Service {
	return &Service{
		logger:    slog.Default(),
		embedder:  embedder,
		srcDir:    srcDir,
		indexPath: indexPath,
	}
}

func (s *Service) Stop() {
	s.logger.Info("indexer service stopped")
}

// BuildOnce rebuilds the whole index from the source folder.
func (s *Service) BuildOnce(ctx context.Context) (int, error) {
	return index.Build(ctx, s.embedder, s.srcDir, s.indexPath)
}

// Run builds the index, then keeps watching the source folder and
// rebuilding until a shutdown signal arrives.
func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if n, err := s.BuildOnce(ctx); err != nil {
		s.logger.Error("initial index build failed", "error", err)
	} else {
		s.logger.Info("index built", "documents", n, "path", s.indexPath)
	}

	changes := make(chan string, 16)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(changes)
		s.watch(ctx, changes)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.rebuildLoop(ctx, changes)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()
	signal.Stop(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
}

// watch forwards .txt events from the source folder to out.
func (s *Service) watch(ctx context.Context, out chan<- string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("failed to create watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(s.srcDir); err != nil {
		s.logger.Error("failed to watch source directory", "dir", s.srcDir, "error", err)
		return
	}
	s.logger.Info("watching source directory", "dir", s.srcDir)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".txt") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case out <- event.Name:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// rebuildLoop debounces change events and triggers full rebuilds.
func (s *Service) rebuildLoop(ctx context.Context, changes <-chan string) {
	timer := time.NewTimer(rebuildDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-changes:
			if !ok {
				return
			}
			s.logger.Info("source change detected", "file", name)
			timer.Reset(rebuildDelay)
		case <-timer.C:
			if n, err := s.BuildOnce(ctx); err != nil {
				s.logger.Error("index rebuild failed", "error", err)
			} else {
				s.logger.Info("index rebuilt", "documents", n, "path", s.indexPath)
			}
		}
	}
}
