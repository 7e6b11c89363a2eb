package sequencer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const saveTimeFormat = "2006-01-02_15-04-05"

// SaveInfo describes a saved snapshot file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// SnapshotsDir returns the default snapshot directory
func SnapshotsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drum", "patterns"), nil
}

// ListSnapshots returns timestamped saves in dir, newest first
func ListSnapshots(dir string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, ok := parseSaveName(entry.Name())
		if !ok {
			continue
		}
		saves = append(saves, info)
	}

	sort.Slice(saves, func(i, j int) bool {
		if !saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Timestamp.After(saves[j].Timestamp)
		}
		return saves[i].Filename > saves[j].Filename
	})
	return saves, nil
}

// parseSaveName splits 2024-01-15_14-30-00[_name].json
func parseSaveName(filename string) (SaveInfo, bool) {
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(saveTimeFormat) {
		return SaveInfo{}, false
	}
	ts, err := time.ParseInLocation(saveTimeFormat, base[:len(saveTimeFormat)], time.Local)
	if err != nil {
		return SaveInfo{}, false
	}
	info := SaveInfo{Filename: filename, Timestamp: ts}
	if rest := base[len(saveTimeFormat):]; len(rest) > 1 && rest[0] == '_' {
		info.Name = rest[1:]
	}
	return info, true
}

// SaveSnapshot writes snap to dir as a timestamped file and returns the filename.
func SaveSnapshot(dir, name string, snap Snapshot) (string, error) {
	return saveSnapshotAt(dir, name, snap, time.Now())
}

func saveSnapshotAt(dir, name string, snap Snapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name != "" {
		snap.Name = name
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}

	filename := now.Format(saveTimeFormat)
	if safe := sanitizeFilename(name); safe != "" {
		filename += "_" + safe
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// LoadSnapshot reads one snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("%w: %s: %v", ErrSnapshot, filepath.Base(path), err)
	}
	return snap, nil
}

// LoadLatestSnapshot reads the newest save in dir.
func LoadLatestSnapshot(dir string) (Snapshot, error) {
	saves, err := ListSnapshots(dir)
	if err != nil {
		return Snapshot{}, err
	}
	if len(saves) == 0 {
		return Snapshot{}, fmt.Errorf("no saves found in %s", dir)
	}
	return LoadSnapshot(filepath.Join(dir, saves[0].Filename))
}

// DeleteSnapshot deletes a specific save file
func DeleteSnapshot(dir, filename string) error {
	return os.Remove(filepath.Join(dir, filename))
}

// RenameSnapshot changes the name part of a save, keeping its timestamp
func RenameSnapshot(dir, oldFilename, newName string) (string, error) {
	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(saveTimeFormat)
	if safe := sanitizeFilename(strings.TrimSpace(newName)); safe != "" {
		newFilename += "_" + safe
	}
	newFilename += ".json"

	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

var filenameReplacer = strings.NewReplacer(
	" ", "-", "/", "-", "\\", "-", ":", "-",
	"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}
