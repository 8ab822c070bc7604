package catalog

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"aurora/pkg/models"
)

// Merge combines config-declared models, the registry, and on-disk
// discovery into the single list served by GET /api/models. Precedence
// when a name collides is config > registry > discovered — a config
// entry always wins, then a registry entry, and a bare discovered file
// only appears if nothing else already claims that name.
func Merge(configModels map[string]string, registry []models.ModelEntry, storageDir string) []models.CatalogModel {
	seen := make(map[string]struct{})
	var out []models.CatalogModel

	names := make([]string, 0, len(configModels))
	for name := range configModels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, models.CatalogModel{
			Name:   name,
			Path:   configModels[name],
			Source: models.SourceConfig,
		})
		seen[name] = struct{}{}
	}

	sort.Slice(registry, func(i, j int) bool { return registry[i].Name < registry[j].Name })
	for _, e := range registry {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		out = append(out, models.CatalogModel{
			Name:   e.Name,
			Path:   e.Path,
			RepoID: e.RepoID,
			Source: models.SourceRegistry,
		})
		seen[e.Name] = struct{}{}
	}

	for _, d := range Discover(storageDir) {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		out = append(out, d)
		seen[d.Name] = struct{}{}
	}

	return out
}

// IsConfigDeclared reports whether name is present in the config-declared
// model map — callers use this to refuse deletion of config models.
func IsConfigDeclared(configModels map[string]string, name string) bool {
	_, ok := configModels[name]
	return ok
}

var ggufShardPattern = regexp.MustCompile(`^(.*)-(\d{5})-of-(\d{5})\.gguf$`)

// Discover scans storageDir for loose .gguf files and model directories.
// It does not consult config or the registry; Merge drops discovered
// names that those sources already claim. A file named
// "<name>.gguf" becomes model "<name>"; a sharded set
// "<prefix>-00001-of-NNNNN.gguf" collapses to a single entry named
// "<prefix>" pointing at the first shard; a directory containing any
// .gguf file becomes a model named after the directory.
func Discover(storageDir string) []models.CatalogModel {
	var out []models.CatalogModel
	if storageDir == "" {
		return out
	}

	entries, err := os.ReadDir(storageDir)
	if err != nil {
		return out
	}

	shardPrefixes := make(map[string]string) // prefix -> first-shard path

	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(storageDir, name)

		if entry.IsDir() {
			if firstGGUF := firstGGUFInDir(full); firstGGUF != "" {
				out = append(out, models.CatalogModel{
					Name:   name,
					Path:   firstGGUF,
					Source: models.SourceDiscovered,
				})
			}
			continue
		}

		if m := ggufShardPattern.FindStringSubmatch(name); m != nil {
			prefix, shardNum := m[1], m[2]
			if shardNum == "00001" {
				shardPrefixes[prefix] = full
			}
			continue
		}

		if strings.HasSuffix(name, ".gguf") {
			modelName := strings.TrimSuffix(name, ".gguf")
			out = append(out, models.CatalogModel{
				Name:   modelName,
				Path:   full,
				Source: models.SourceDiscovered,
			})
		}
	}

	for prefix, path := range shardPrefixes {
		out = append(out, models.CatalogModel{
			Name:   prefix,
			Path:   path,
			Source: models.SourceDiscovered,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func firstGGUFInDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var candidates []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".gguf") {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[0])
}

// ExpandShards returns the full set of shard filenames for a multi-part
// GGUF file, given the first shard's filename
// ("<prefix>-00001-of-NNNNN.gguf"). If filename is not a first shard, it
// returns a single-element slice containing filename unchanged.
func ExpandShards(filename string) []string {
	m := ggufShardPattern.FindStringSubmatch(filename)
	if m == nil || m[2] != "00001" {
		return []string{filename}
	}
	prefix, total := m[1], m[3]
	width := len(total)
	count, err := strconv.Atoi(total)
	if err != nil || count <= 0 {
		return []string{filename}
	}

	out := make([]string, count)
	for i := 1; i <= count; i++ {
		out[i-1] = prefix + "-" + padNumber(i, width) + "-of-" + total + ".gguf"
	}
	return out
}

func padNumber(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
