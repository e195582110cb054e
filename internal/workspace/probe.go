// Package workspace inspects a project directory for language, framework
// and monorepo markers. It only looks at directory entries and manifest
// contents; nothing is executed.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Profile is what a probe learned about a directory
type Profile struct {
	Root       string   `json:"root"`
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Domains    []string `json:"domains"`
	Monorepo   bool     `json:"monorepo"`
	Packages   []string `json:"packages,omitempty"`
}

type marker struct {
	file  string
	value string
}

// languageMarkers maps manifest files to languages, checked in order
var languageMarkers = []marker{
	{"package.json", "javascript"},
	{"tsconfig.json", "typescript"},
	{"go.mod", "go"},
	{"requirements.txt", "python"},
	{"Pipfile", "python"},
	{"pyproject.toml", "python"},
	{"Cargo.toml", "rust"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"Gemfile", "ruby"},
	{"composer.json", "php"},
	{"pubspec.yaml", "dart"},
}

type frameworkMarker struct {
	manifest  string
	needle    string
	framework string
	domain    string
}

// frameworkMarkers are substring checks inside manifests
var frameworkMarkers = []frameworkMarker{
	{"package.json", "\"react-native\"", "react-native", "mobile"},
	{"package.json", "\"react\"", "react", "web"},
	{"package.json", "\"next\"", "nextjs", "web"},
	{"package.json", "\"vue\"", "vue", "web"},
	{"package.json", "\"@angular/core\"", "angular", "web"},
	{"package.json", "\"express\"", "express", "backend"},
	{"package.json", "\"electron\"", "electron", "desktop"},
	{"go.mod", "gin-gonic/gin", "gin", "backend"},
	{"go.mod", "gofiber/fiber", "fiber", "backend"},
	{"go.mod", "labstack/echo", "echo", "backend"},
	{"requirements.txt", "django", "django", "backend"},
	{"requirements.txt", "flask", "flask", "backend"},
	{"requirements.txt", "fastapi", "fastapi", "backend"},
	{"pubspec.yaml", "flutter", "flutter", "mobile"},
}

// domainDirs are top-level directories that imply a domain
var domainDirs = []marker{
	{"ios", "mobile"},
	{"android", "mobile"},
	{"infra", "infrastructure"},
	{"terraform", "infrastructure"},
	{"k8s", "infrastructure"},
}

// workspaceFiles mark a monorepo root regardless of layout
var workspaceFiles = []string{
	"pnpm-workspace.yaml",
	"lerna.json",
	"nx.json",
	"turbo.json",
	"go.work",
	"rush.json",
}

// packageParents are directories whose children are conventionally workspace members
var packageParents = []string{"packages", "apps", "services", "libs", "modules"}

// Probe inspects dir and returns its Profile.
func Probe(dir string) (*Profile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", dir)
	}

	p := &Profile{Root: dir}

	for _, m := range languageMarkers {
		if exists(filepath.Join(dir, m.file)) {
			p.Languages = appendUnique(p.Languages, m.value)
		}
	}

	for _, m := range frameworkMarkers {
		if hasInFile(filepath.Join(dir, m.manifest), m.needle) {
			p.Frameworks = appendUnique(p.Frameworks, m.framework)
			p.Domains = appendUnique(p.Domains, m.domain)
		}
	}

	for _, m := range domainDirs {
		if isDir(filepath.Join(dir, m.file)) {
			p.Domains = appendUnique(p.Domains, m.value)
		}
	}

	p.Packages = memberPackages(dir)
	p.Monorepo = isMonorepo(dir, p.Packages)

	return p, nil
}

func isMonorepo(dir string, packages []string) bool {
	for _, f := range workspaceFiles {
		if exists(filepath.Join(dir, f)) {
			return true
		}
	}

	if hasInFile(filepath.Join(dir, "package.json"), "\"workspaces\"") {
		return true
	}
	if hasInFile(filepath.Join(dir, "Cargo.toml"), "[workspace]") {
		return true
	}

	return len(packages) >= 2
}

// memberPackages lists subdirectories of the conventional parents that
// carry their own manifest, sorted for stable output.
func memberPackages(dir string) []string {
	var members []string

	for _, parent := range packageParents {
		entries, err := os.ReadDir(filepath.Join(dir, parent))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			child := filepath.Join(dir, parent, e.Name())
			if hasManifest(child) {
				members = append(members, filepath.ToSlash(filepath.Join(parent, e.Name())))
			}
		}
	}

	sort.Strings(members)
	return members
}

func hasManifest(dir string) bool {
	for _, m := range languageMarkers {
		if exists(filepath.Join(dir, m.file)) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hasInFile(filename, searchString string) bool {
	data, err := os.ReadFile(filename)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), searchString)
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}
