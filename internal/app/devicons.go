package app

import (
	"os"
	"path"
	"time"

	devicons "github.com/epilande/go-devicons"

	"github.com/neontowel/gitix/internal/models"
)

// iconFileInfo satisfies os.FileInfo for icon lookup without touching the
// disk; deleted files still get an icon.
type iconFileInfo struct {
	name  string
	isDir bool
}

func (i iconFileInfo) Name() string { return i.name }

func (i iconFileInfo) Size() int64 { return 0 }

func (i iconFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (i iconFileInfo) ModTime() time.Time { return time.Time{} }

func (i iconFileInfo) IsDir() bool { return i.isDir }

func (i iconFileInfo) Sys() any { return nil }

func deviconForPath(p string) string {
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return ""
	}
	return devicons.IconForInfo(iconFileInfo{name: name}).Icon
}

const (
	iconOK    = "✓"
	iconError = "✗"
	iconBusy  = "…"
)

func outcomeIcon(outcome models.SyncOutcome) string {
	switch outcome {
	case models.OutcomeSuccess:
		return iconOK
	case models.OutcomeError:
		return iconError
	default:
		return iconBusy
	}
}
