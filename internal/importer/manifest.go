package importer

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectManifest is the `spy.yaml` project file: the `vm.path`-
// equivalent list of search roots the import analyzer walks to
// resolve a bare module name to a source file, plus the handful of
// project-wide knobs the CLI exposes (mirrors the teacher's
// eval_harness/manifest YAML usage, trimmed to what the importer
// actually consumes).
type ProjectManifest struct {
	SearchPaths  []string `yaml:"search_paths"`
	CacheDir     string   `yaml:"cache_dir"`
	CacheRobust  bool     `yaml:"cache_robust"`
	AllowPyFiles bool     `yaml:"allow_py_files"`
}

// LoadManifest reads and parses a spy.yaml file. A missing file is not
// an error: it returns the zero ProjectManifest, letting callers fall
// back to "." as the sole search root.
func LoadManifest(path string) (*ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectManifest{}, nil
		}
		return nil, err
	}
	var m ProjectManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
