package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-courses/internal/document"
	"github.com/p-n-ai/pai-courses/internal/locale"
)

// Manifest files. Both are optional.
const (
	indexManifest  = "courses.yaml"
	courseManifest = "course.yaml"
)

// CourseManifest orders a course's sections.
type CourseManifest struct {
	Sections []string `yaml:"sections"`
}

// IndexManifest orders the courses.
type IndexManifest struct {
	Courses []string `yaml:"courses"`
}

// LoadDir reads <root>/<course>/<section>/<locale>.mdx (or .md) files.
//
// Section position comes from <root>/<course>/course.yaml when it lists the
// section, otherwise from the document's front matter "order". Sections the
// manifest leaves out follow every listed one. Course order comes from
// <root>/courses.yaml.
func LoadDir(root string) (*Set, error) {
	var index IndexManifest
	if err := readManifest(filepath.Join(root, indexManifest), &index); err != nil {
		return nil, err
	}

	manifests := make(map[string]map[string]int)
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			return nil
		}

		ext := filepath.Ext(parts[2])
		if ext != ".mdx" && ext != ".md" {
			return nil
		}
		code := strings.TrimSuffix(parts[2], ext)
		loc, err := locale.CanonicalLocale(code)
		if err != nil {
			slog.Warn("skipping document with invalid locale", "path", path, "error", err)
			return nil
		}

		course, section := parts[0], parts[1]
		order, ok := manifests[course]
		if !ok {
			order, err = loadCourseManifest(filepath.Join(root, course, courseManifest))
			if err != nil {
				return err
			}
			manifests[course] = order
		}

		doc, err := readDocument(path, Path{Course: course, Section: section, Locale: loc})
		if err != nil {
			return err
		}
		if pos, ok := order[section]; ok {
			doc.Position = pos
		} else if len(order) > 0 {
			doc.Position += len(order) + 1
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	set, err := NewOrderedSet(index.Courses, docs...)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	slog.Info("content loaded", "documents", set.Len(), "courses", len(set.Courses()))
	return set, nil
}

func readDocument(path string, p Path) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	fm, _, _, err := document.SplitFrontMatter(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return Document{
		Path:     p,
		Position: fm.Order,
		Title:    fm.Title,
		Body:     data,
	}, nil
}

func loadCourseManifest(path string) (map[string]int, error) {
	var m CourseManifest
	if err := readManifest(path, &m); err != nil {
		return nil, err
	}
	order := make(map[string]int, len(m.Sections))
	for i, s := range m.Sections {
		if _, dup := order[s]; !dup {
			order[s] = i + 1
		}
	}
	return order, nil
}

func readManifest(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
