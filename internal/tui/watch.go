package tui

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"geostyle/internal/logging"
)

// editors often save with several writes in a row
const watchDebounce = 150 * time.Millisecond

type fileChangedMsg struct{ path string }

type watchErrMsg struct{ err error }

// watch follows path for changes. The directory is watched rather than the
// file so that rename-on-save is seen.
func (m *Model) watch(path string) {
	if m.watcher == nil {
		return
	}
	m.watched.Store(nil)
	if path == "" {
		return
	}
	dir := filepath.Dir(path)
	if dir != m.watchDir {
		if m.watchDir != "" {
			_ = m.watcher.Remove(m.watchDir)
		}
		if err := m.watcher.Add(dir); err != nil {
			logging.Logger().Warn("watch", "dir", dir, "err", err)
			m.watchDir = ""
			return
		}
		m.watchDir = dir
	}
	m.watched.Store(&path)
}

// watchCmd waits for the next change of the watched file.
func (m Model) watchCmd() tea.Cmd {
	w, watched := m.watcher, m.watched
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				p := watched.Load()
				if p == nil || filepath.Clean(ev.Name) != filepath.Clean(*p) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				drain(w, watchDebounce)
				logging.Logger().Debug("file changed", "path", *p, "op", ev.Op.String())
				return fileChangedMsg{path: *p}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// drain swallows events until d passes without any.
func drain(w *fsnotify.Watcher, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			t.Reset(d)
		case <-t.C:
			return
		}
	}
}
