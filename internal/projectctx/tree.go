// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// File tree rendering

package projectctx

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

type treeWalker struct {
	fs       afero.Fs
	maxDepth int
	exclude  map[string]bool
	sb       strings.Builder
}

// Tree renders root as an indented tree, directories first
func Tree(afs afero.Fs, root string, maxDepth int, excludeDirs []string) string {
	if afs == nil {
		afs = afero.NewOsFs()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	w := &treeWalker{fs: afs, maxDepth: maxDepth, exclude: make(map[string]bool)}
	for _, d := range excludeDirs {
		w.exclude[d] = true
	}

	w.sb.WriteString(filepath.Base(root) + "/\n")
	if !w.exclude[filepath.Base(root)] {
		w.walk(root, "", 1)
	}
	return w.sb.String()
}

func (w *treeWalker) walk(dir, prefix string, depth int) {
	if depth > w.maxDepth {
		return
	}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || os.IsPermission(err) {
			w.sb.WriteString(prefix + "└── " + PermissionNote + "\n")
		}
		return
	}

	var dirs, files []os.FileInfo
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			if !w.exclude[name] {
				dirs = append(dirs, e)
			}
			continue
		}
		if e.Mode().IsRegular() {
			files = append(files, e)
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	items := append(dirs, files...)
	for i, e := range items {
		last := i == len(items)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}

		if e.IsDir() {
			w.sb.WriteString(prefix + connector + e.Name() + "/\n")
			w.walk(filepath.Join(dir, e.Name()), prefix+indent, depth+1)
			continue
		}
		w.sb.WriteString(prefix + connector + e.Name() + "\n")
	}
}
