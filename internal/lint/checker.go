// Package lint applies the line-length lint policy to a source tree.
//
// Exactly one style rule is in scope: a line strictly longer than the
// configured maximum is one violation. Files matching any exclude glob
// are skipped entirely. Everything else a general-purpose linter does is
// the external linter's business; this package only realizes the policy
// the configuration declares.
package lint

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mmr-tortoise/qamatrix/internal/glob"
	"github.com/mmr-tortoise/qamatrix/internal/model"
)

// Checker is a compiled lint policy. Build once with NewChecker, then
// run it over files or whole trees. Read-only after construction.
type Checker struct {
	// limit is the maximum allowed line length in characters.
	limit int

	// exclude holds the compiled exclude globs.
	exclude *glob.Set
}

// NewChecker compiles a LintPolicy record into a Checker.
// A non-positive line limit and malformed globs are load-time errors.
func NewChecker(cfg model.LintPolicy) (*Checker, error) {
	if cfg.MaxLineLength <= 0 {
		return nil, fmt.Errorf("lint: max line length must be positive, got %d", cfg.MaxLineLength)
	}
	exclude, err := glob.CompileSet(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Checker{limit: cfg.MaxLineLength, exclude: exclude}, nil
}

// Limit returns the configured maximum line length.
func (c *Checker) Limit() int {
	return c.limit
}

// Excludes reports whether the file at the given path is skipped by the
// exclude globs.
func (c *Checker) Excludes(path string) bool {
	return c.exclude.Match(path)
}

// CheckReader scans the given reader line by line and returns one
// violation per over-long line. The path is only used to fill the
// violation records; exclusion must be checked by the caller.
//
// Length is counted in characters (runes), not bytes, so multi-byte
// UTF-8 text is not penalized by its encoding.
func (c *Checker) CheckReader(path string, r io.Reader) ([]model.LintViolation, error) {
	var violations []model.LintViolation

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		length := utf8.RuneCountInString(scanner.Text())
		if length > c.limit {
			violations = append(violations, model.LintViolation{
				Path:   path,
				Line:   lineNo,
				Length: length,
				Limit:  c.limit,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return violations, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return violations, nil
}

// CheckFile opens and checks a single file. Excluded files return no
// violations without being opened.
func (c *Checker) CheckFile(root, rel string) ([]model.LintViolation, error) {
	if c.Excludes(rel) {
		return nil, nil
	}
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.CheckReader(rel, f)
}

// CheckTree walks the tree rooted at root and checks every ".py" file
// not caught by the exclude globs. Violations are returned in walk order
// (lexical within each directory), which keeps output stable run to run.
func (c *Checker) CheckTree(root string) ([]model.LintViolation, error) {
	var violations []model.LintViolation

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
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
		if c.Excludes(rel) {
			return nil
		}

		vs, checkErr := c.CheckFile(root, rel)
		if checkErr != nil {
			return checkErr
		}
		violations = append(violations, vs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return violations, nil
}
