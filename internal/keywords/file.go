package keywords

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const reloadDelay = 300 * time.Millisecond

type fileData struct {
	Keywords  []string  `yaml:"keywords"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// File is a Source backed by a YAML file. Edits made by other programs are
// picked up by Watch; Save writes through and notifies subscribers.
type File struct {
	mu        sync.Mutex
	filePath  string
	set       []string
	listeners listeners

	watcher *fsnotify.Watcher
	timer   *time.Timer
}

// OpenFile loads the keyword file at path. A missing file is an empty set.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create keyword directory: %w", err)
	}
	f := &File{filePath: path}
	set, err := f.read()
	if err != nil {
		return nil, err
	}
	f.set = set
	log.Printf("📋 Loaded %d keywords from %s", len(set), path)
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.filePath
}

func (f *File) Get() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.set)
}

func (f *File) OnChange(fn func([]string)) func() {
	return f.listeners.add(fn)
}

// Save normalises raw, writes it to disk and notifies subscribers when the
// set changed. It returns the normalised set.
func (f *File) Save(raw []string) ([]string, error) {
	set := Normalize(raw)

	f.mu.Lock()
	if err := f.write(set); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	changed := !Equal(f.set, set)
	f.set = set
	f.mu.Unlock()

	log.Printf("💾 Saved %d keywords to %s", len(set), f.filePath)
	if changed {
		f.listeners.notify(set)
	}
	return clone(set), nil
}

// Reload re-reads the file and notifies subscribers when the set changed.
func (f *File) Reload() error {
	set, err := f.read()
	if err != nil {
		return err
	}

	f.mu.Lock()
	changed := !Equal(f.set, set)
	f.set = set
	f.mu.Unlock()

	if changed {
		log.Printf("🔄 Keyword file changed: %d keywords", len(set))
		f.listeners.notify(set)
	}
	return nil
}

// Watch reloads the file whenever it changes on disk until ctx is done or
// Close is called. Bursts of events within reloadDelay cause one reload.
func (f *File) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create keyword watcher: %w", err)
	}
	//watch the directory: editors replace files instead of writing in place
	if err := watcher.Add(filepath.Dir(f.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch keyword directory: %w", err)
	}

	f.mu.Lock()
	if f.watcher != nil {
		f.watcher.Close()
	}
	f.watcher = watcher
	f.mu.Unlock()

	go f.watchLoop(ctx, watcher)
	return nil
}

func (f *File) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer f.stopTimer()
	target := filepath.Clean(f.filePath)
	for {
		select {
		case <-ctx.Done():
			watcher.Close()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			f.scheduleReload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ Keyword watcher error: %v", err)
		}
	}
}

func (f *File) scheduleReload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(reloadDelay, func() {
		if err := f.Reload(); err != nil {
			log.Printf("⚠️ Failed to reload keywords: %v", err)
		}
	})
}

func (f *File) stopTimer() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Close stops watching.
func (f *File) Close() error {
	f.mu.Lock()
	w := f.watcher
	f.watcher = nil
	f.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}

func (f *File) read() ([]string, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read keyword file: %w", err)
	}
	var fd fileData
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("failed to parse keyword file: %w", err)
	}
	return Normalize(fd.Keywords), nil
}

// write replaces the file atomically. Callers hold f.mu.
func (f *File) write(set []string) error {
	data, err := yaml.Marshal(fileData{Keywords: set, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	tmp := f.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write keyword file: %w", err)
	}
	if err := os.Rename(tmp, f.filePath); err != nil {
		return fmt.Errorf("failed to replace keyword file: %w", err)
	}
	return nil
}
