// measure.go walks a source tree and applies the coverage policy to
// every Python file, producing a per-file accounting of measurable
// versus excluded lines.
package coverage

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileAccounting summarizes the policy decision for one source file.
type FileAccounting struct {
	// Path is the file path relative to the measured root.
	Path string `json:"path"`

	// Omitted indicates the whole file was excluded by an omit glob.
	// When true, Measurable and Excluded are both zero.
	Omitted bool `json:"omitted"`

	// Measurable is the number of lines that count toward coverage.
	Measurable int `json:"measurable"`

	// Excluded is the number of lines carrying an exclude marker.
	Excluded int `json:"excluded"`
}

// Accounting is the aggregate result of applying the policy to a tree.
// Files appear in sorted path order for stable output.
type Accounting struct {
	Files []FileAccounting `json:"files"`
}

// Totals sums measurable and excluded lines across all non-omitted files,
// and counts the omitted files.
func (a *Accounting) Totals() (measurable, excluded, omitted int) {
	for _, f := range a.Files {
		if f.Omitted {
			omitted++
			continue
		}
		measurable += f.Measurable
		excluded += f.Excluded
	}
	return measurable, excluded, omitted
}

// Measure walks the tree rooted at root and applies the policy to every
// ".py" file found. Paths are reported relative to root. Directories that
// cannot be read abort the walk; individual unreadable files do not occur
// in practice once the directory is listed, so any read error is returned.
func (p *Policy) Measure(root string) (*Accounting, error) {
	acc := &Accounting{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Never descend into VCS metadata or the tool's own scopes.
			name := d.Name()
			if path != root && (name == ".git" || name == ".qamatrix" || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		// File-level omission wins before the file is ever opened.
		if p.OmitsFile(rel) {
			acc.Files = append(acc.Files, FileAccounting{Path: rel, Omitted: true})
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return openErr
		}
		defer f.Close()

		fa, readErr := p.accountFile(rel, f)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", rel, readErr)
		}
		acc.Files = append(acc.Files, fa)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(acc.Files, func(i, j int) bool {
		return acc.Files[i].Path < acc.Files[j].Path
	})
	return acc, nil
}

// accountFile applies the line-exclusion markers to a single file's
// contents. The path is already known to be non-omitted.
func (p *Policy) accountFile(rel string, r io.Reader) (FileAccounting, error) {
	fa := FileAccounting{Path: rel}

	scanner := bufio.NewScanner(r)
	// Source lines can exceed bufio's 64KiB default token size in
	// generated files; grow the buffer rather than failing the scan.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if p.ExcludesLine(scanner.Text()) {
			fa.Excluded++
		} else {
			fa.Measurable++
		}
	}
	if err := scanner.Err(); err != nil {
		return fa, err
	}
	return fa, nil
}
