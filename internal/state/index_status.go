package state

import (
	"fmt"
	"strings"
	"time"

	indexsvc "github.com/Paintersrp/vaultlens/internal/services/index"
)

// statsSource is the part of the index service the status line needs.
type statsSource interface {
	Stats() indexsvc.Stats
}

// IndexStatus summarizes the shared index in one line, or returns an empty
// string before the vault is opened.
func (s *State) IndexStatus() string {
	if s == nil || s.Index == nil {
		return ""
	}
	return formatIndexStatus(s.Index)
}

func formatIndexStatus(svc statsSource) string {
	if svc == nil {
		return ""
	}

	stats := svc.Stats()
	parts := []string{fmt.Sprintf("Idx: %d notes", stats.Documents)}
	if stats.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", stats.Skipped))
	}
	if !stats.LastRebuild.IsZero() {
		parts = append(parts, fmt.Sprintf("rebuilt %s", formatRebuildTime(stats.LastRebuild)))
	}

	return strings.Join(parts, " · ")
}

func formatRebuildTime(t time.Time) string {
	return t.Local().Format("15:04")
}
