package level

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// levelFS embeds the shipped levels at build time.
//
//go:embed levels/*.yaml
var levelFS embed.FS

// EmbeddedDir is the directory of levelFS holding the level files.
const EmbeddedDir = "levels"

// Load reads and decodes a YAML file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	return decodeFile[T](levelFS, filename)
}

// Parse decodes a single level. Unknown keys are rejected so typos in level
// files do not silently drop data.
func Parse(data []byte, name string) (*Def, error) {
	def, err := decode[Def](data, name)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadEmbedded returns the shipped levels ordered by file name.
func LoadEmbedded() ([]*Def, error) {
	return loadFS(levelFS, EmbeddedDir)
}

// LoadDir returns the levels in dir ordered by file name.
func LoadDir(dir string) ([]*Def, error) {
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, dir string) ([]*Def, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels in %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isLevelFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	defs := make([]*Def, 0, len(names))
	for _, name := range names {
		def, err := decodeFile[Def](fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		defs = append(defs, &def)
	}
	return defs, nil
}

func decodeFile[T any](fsys fs.FS, filename string) (T, error) {
	var result T

	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return result, fmt.Errorf("failed to read level file %s: %w", filename, err)
	}
	return decode[T](content, filename)
}

func decode[T any](content []byte, name string) (T, error) {
	var result T

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("failed to parse YAML from %s: %w", name, err)
	}
	return result, nil
}

func isLevelFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
