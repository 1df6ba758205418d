package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"annodocs/internal/directory"
	"annodocs/internal/document"
	"annodocs/internal/render"
)

// CheckDocument verifies the document is a readable HTML export with a body.
func CheckDocument(path string) Result {
	const name = "Document"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured (set paths.document)"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer f.Close()
	doc, err := document.Parse(f)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d blocks)", path, len(doc.Blocks()))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
// A directory that does not exist yet passes when its nearest existing
// parent is writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkCreatable(name, path)
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func checkCreatable(name, path string) Result {
	parent := filepath.Dir(filepath.Clean(path))
	for {
		info, err := os.Stat(parent)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, parent)}
			}
			break
		}
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat %s: %v)", path, parent, err)}
		}
		next := filepath.Dir(parent)
		if next == parent {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckSpeakers verifies the speaker directory file loads.
func CheckSpeakers(path string) Result {
	speakers, err := directory.LoadSpeakers(path)
	if err != nil {
		return Result{Name: "Speaker directory", Detail: summarizeLoadError(path, err)}
	}
	return Result{Name: "Speaker directory", Passed: true, Detail: fmt.Sprintf("%s (%d speakers)", path, speakers.Len())}
}

// CheckAuthors verifies the author directory file loads.
func CheckAuthors(path string) Result {
	authors, err := directory.LoadAuthors(path)
	if err != nil {
		return Result{Name: "Author directory", Detail: summarizeLoadError(path, err)}
	}
	return Result{Name: "Author directory", Passed: true, Detail: fmt.Sprintf("%s (%d authors)", path, authors.Len())}
}

// CheckTemplates verifies the template set, including any overrides, parses
// and defines every required template.
func CheckTemplates(dir string) Result {
	const name = "Templates"

	if _, err := render.NewTemplateRenderer(dir, nil); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if strings.TrimSpace(dir) == "" {
		return Result{Name: name, Passed: true, Detail: "embedded"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (overrides ok)", dir)}
}

func summarizeLoadError(path string, err error) string {
	if errors.Is(err, directory.ErrUnknownFormat) {
		return fmt.Sprintf("%s (error: unsupported extension; use .toml, .yaml, .yml or .csv)", path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("%s (error: does not exist)", path)
	}
	return fmt.Sprintf("%s (error: %v)", path, err)
}
