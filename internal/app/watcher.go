package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// onFileChanged handles a create/modify/delete event from the watcher.
// It re-analyzes the file and updates the store in place. A path that no
// longer exists may have been a directory, so everything stored below it is
// dropped too.
func (a *App) onFileChanged(absPath string) {
	rel, ok := a.Analyzer.Rel(absPath)
	if !ok || rel == "." {
		return
	}
	supported := a.Parser.SupportsExtension(filepath.Ext(absPath))
	project := a.ProjectName()
	log := a.Log.WithProject(project).WithFile(rel)

	info, err := os.Stat(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		if supported {
			if err := a.Store.DeleteFile(project, rel); err != nil {
				log.WithError(err).Error("delete file")
				return
			}
		}
		removed, err := a.Store.DeleteDir(project, rel)
		if err != nil {
			log.WithError(err).Error("delete directory")
			return
		}
		if supported || len(removed) > 0 {
			log.Info("removed", "files", max(len(removed), 1))
		}
		return
	}
	if err != nil || info.IsDir() || !supported {
		return
	}

	structure, err := a.Analyzer.AnalyzeOne(absPath)
	if err != nil {
		log.WithError(err).Warn("re-analyze failed")
		return
	}
	if err := a.Store.PutFile(project, structure); err != nil {
		log.WithError(err).Error("store file")
		return
	}
	log.Info("file updated", "functions", len(structure.Functions), "imports", len(structure.Imports))
}
