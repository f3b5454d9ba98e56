// # internal/render/site.go
package render

import (
	"path/filepath"

	"docref/internal/model"
	"docref/internal/shared/observability"
	"docref/internal/shared/util"
)

// Site writes rendered pages below an output directory, one file per
// module plus an index.
type Site struct {
	renderer *Renderer
	outDir   string
}

func NewSite(renderer *Renderer, outDir string) *Site {
	return &Site{renderer: renderer, outDir: outDir}
}

// WriteAll renders and writes every module page and the index. Modules
// are written in sorted order so repeated runs touch files in the same
// sequence.
func (s *Site) WriteAll() error {
	for _, mod := range s.renderer.m.Modules() {
		if err := s.WriteModule(mod); err != nil {
			return err
		}
	}
	return s.writeIndex()
}

// WriteModule renders and writes a single module page, used by the
// incremental path after a file change.
func (s *Site) WriteModule(mod *model.Entity) error {
	path := filepath.Join(s.outDir, filepath.FromSlash(PagePath(mod.Name)))
	if err := util.WriteStringWithDirs(path, s.renderer.ModulePage(mod), 0o644); err != nil {
		return err
	}
	observability.PagesRendered.Inc()
	return nil
}

func (s *Site) writeIndex() error {
	path := filepath.Join(s.outDir, "index.md")
	if err := util.WriteStringWithDirs(path, s.renderer.IndexPage(), 0o644); err != nil {
		return err
	}
	observability.PagesRendered.Inc()
	return nil
}
