package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Output formats accepted in [output] and by --emit.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Config is the content of viewc.toml.
type Config struct {
	Project ProjectSection `toml:"project"`
	Output  OutputSection  `toml:"output"`
	Cache   CacheSection   `toml:"cache"`

	// Root is the directory holding the manifest; relative paths are
	// resolved against it. Empty for Default.
	Root string `toml:"-"`
	// Path is the manifest file.
	Path string `toml:"-"`
	// Unknown lists keys the decoder did not recognize.
	Unknown []string `toml:"-"`
}

type ProjectSection struct {
	Name           string   `toml:"name"`
	Registry       []string `toml:"registry"`
	Include        []string `toml:"include"`
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

type OutputSection struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"`
}

type CacheSection struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

var (
	// ErrProjectSectionMissing is returned for a manifest without [project].
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrBadFormat is returned for an unknown [output].format.
	ErrBadFormat = errors.New("unknown output format")
)

// Default is the configuration used when no manifest is found.
func Default() Config {
	return Config{
		Project: ProjectSection{
			Include:        []string{"*.view"},
			MaxDiagnostics: 100,
		},
		Output: OutputSection{Dir: "build", Format: FormatText},
	}
}

// Parse decodes a manifest. Missing fields keep their Default values.
func Parse(path string, data []byte) (Config, error) {
	cfg := Default()
	var head struct {
		Project *ProjectSection `toml:"project"`
	}
	if _, err := toml.Decode(string(data), &head); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if head.Project == nil {
		return cfg, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		cfg.Unknown = append(cfg.Unknown, key.String())
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	switch cfg.Output.Format {
	case FormatText, FormatJSON, FormatMsgpack:
	case "":
		cfg.Output.Format = FormatText
	default:
		return cfg, fmt.Errorf("%s: %w %q", path, ErrBadFormat, cfg.Output.Format)
	}
	if len(cfg.Project.Include) == 0 {
		cfg.Project.Include = Default().Project.Include
	}
	return cfg, nil
}

// Load reads the manifest at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Discover loads the manifest above startDir, or returns Default with
// found=false when there is none.
func Discover(startDir string) (cfg Config, found bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return Default(), false, err
	}
	cfg, err = Load(path)
	return cfg, err == nil, err
}

// Abs resolves p against the project root.
func (c Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// RegistryPaths returns the registry manifests as absolute paths.
func (c Config) RegistryPaths() []string {
	out := make([]string, 0, len(c.Project.Registry))
	for _, p := range c.Project.Registry {
		out = append(out, c.Abs(p))
	}
	return out
}

// Init writes a starter viewc.toml and registry into dir. It refuses to
// overwrite an existing manifest.
func Init(dir, name string) (string, error) {
	if name == "" {
		name = filepath.Base(dir)
	}
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	cfg := Default()
	cfg.Project.Name = name
	cfg.Project.Registry = []string{"components.toml"}
	cfg.Cache.Enabled = true

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", fmt.Errorf("encode %s: %w", ManifestName, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	reg := filepath.Join(dir, "components.toml")
	if _, err := os.Stat(reg); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(reg, []byte(starterRegistry), 0o644); err != nil {
			return "", err
		}
	}
	return path, nil
}

const starterRegistry = `# Components and slots visible to view! invocations.
[component.Button]
children = "opaque"

[component.Button.props]
on_click = { type = "Fn(MouseEvent)", optional = true }
label = { type = "String", into = true, optional = true }
`

// UnknownKeysMessage renders Unknown for a PRJ6002 warning.
func (c Config) UnknownKeysMessage() string {
	if len(c.Unknown) == 0 {
		return ""
	}
	return fmt.Sprintf("unknown keys in %s: %s", filepath.Base(c.Path), strings.Join(c.Unknown, ", "))
}
