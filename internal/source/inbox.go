package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ProcessedDir is the inbox subdirectory imported files are moved to.
const ProcessedDir = "processed"

// FileInfo describes a file waiting in the inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the files in inbox that a registered reader can handle,
// sorted by name. A missing inbox is empty.
func Scan(inbox string, reg *Registry) ([]FileInfo, error) {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || reg.Get(filepath.Ext(e.Name())) == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(inbox, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MarkProcessed moves a file from the inbox to inbox/processed.
func MarkProcessed(inbox, fileName string) error {
	src := filepath.Join(inbox, fileName)
	dstDir := filepath.Join(inbox, ProcessedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
