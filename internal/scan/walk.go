package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"sentinel/internal/lang"
)

var skipDirNames = map[string]struct{}{
	".git": {}, ".sentinel": {}, "node_modules": {}, "vendor": {}, "dist": {}, "build": {},
	".next": {}, "target": {}, "coverage": {}, "bin": {}, "__pycache__": {}, ".venv": {},
}

type fileEntry struct {
	rel      string
	abs      string
	language string
	size     int64
}

type walkResult struct {
	files   []fileEntry
	skipped int
}

// enumerate collects the scannable files under root in lexical order.
// Files with no recognized language, files beyond the size cap, and
// excluded paths are counted as skipped. A root that is itself a file
// yields a single entry.
func enumerate(root string, excludes []string, langFilter map[string]struct{}, maxFileBytes int64) (walkResult, error) {
	var res walkResult

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return res, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(rootAbs)
	if err != nil {
		return res, fmt.Errorf("stat root: %w", err)
	}

	if !info.IsDir() {
		entry, ok := classify(filepath.Base(rootAbs), rootAbs, info.Size(), excludes, langFilter, maxFileBytes)
		if !ok {
			res.skipped++
			return res, nil
		}
		res.files = append(res.files, entry)
		return res, nil
	}

	walkErr := filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory entries are skipped, not fatal; the
			// per-file read step reports errors for files we did reach.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == rootAbs {
				return nil
			}
			if _, skip := skipDirNames[d.Name()]; skip {
				return filepath.SkipDir
			}
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(rootAbs, path)
		if relErr != nil {
			res.skipped++
			return nil
		}
		rel = filepath.ToSlash(rel)

		fi, infoErr := d.Info()
		var size int64
		if infoErr == nil {
			size = fi.Size()
		}

		entry, ok := classify(rel, path, size, excludes, langFilter, maxFileBytes)
		if !ok {
			res.skipped++
			return nil
		}
		res.files = append(res.files, entry)
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("walk %s: %w", rootAbs, walkErr)
	}
	return res, nil
}

func classify(rel, abs string, size int64, excludes []string, langFilter map[string]struct{}, maxFileBytes int64) (fileEntry, bool) {
	for _, glob := range excludes {
		if globMatch(glob, rel) {
			return fileEntry{}, false
		}
	}

	language := lang.Detect(rel)
	if language == "" {
		return fileEntry{}, false
	}
	if len(langFilter) > 0 {
		if _, ok := langFilter[language]; !ok {
			return fileEntry{}, false
		}
	}
	if maxFileBytes > 0 && size > maxFileBytes {
		return fileEntry{}, false
	}

	return fileEntry{rel: rel, abs: abs, language: language, size: size}, true
}
