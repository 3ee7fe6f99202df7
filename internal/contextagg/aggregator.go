// Package contextagg implements the context-aggregator custom node: reading
// one or more files, directories, URLs, or upstream node outputs into a
// single text blob (optionally per-file) handed to an agent as instruction
// context (spec section 4.11). It satisfies pkg/flowunit.Unit so the graph
// executor schedules it exactly like any other custom node.
package contextagg

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkoukk/tiktoken-go"

	"github.com/kadirpekel/adkflow/internal/compiler/cerr"
)

const UnitID = "context_aggregator"

// InputKind distinguishes where one source's bytes come from.
type InputKind string

const (
	InputFile      InputKind = "file"
	InputDirectory InputKind = "directory"
	InputURL       InputKind = "url"
	InputNode      InputKind = "node"
)

// Mode controls whether resolved sources are joined into one string or kept
// as separate named outputs.
type Mode string

const (
	ModeConcatenate Mode = "concatenate"
	ModePerFile     Mode = "per_file"
)

// NamingScheme controls the variable name assigned to each file in per_file
// mode.
type NamingScheme string

const (
	NamingStem     NamingScheme = "stem"
	NamingIndex    NamingScheme = "index"
	NamingTemplate NamingScheme = "template"
)

// Config is the node's decoded configuration.
type Config struct {
	Kind InputKind `mapstructure:"kind"`

	Path        string   `mapstructure:"path"`
	Recursive   bool     `mapstructure:"recursive"`
	Exclude     []string `mapstructure:"exclude"`
	MaxFiles    int      `mapstructure:"max_files"`
	MaxFileSize int      `mapstructure:"max_file_size"`

	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`

	NodeInputID string `mapstructure:"node_input_id"`

	Mode            Mode         `mapstructure:"mode"`
	NamingScheme    NamingScheme `mapstructure:"naming_scheme"`
	NamingTemplate  string       `mapstructure:"naming_template"`
	Separator       string       `mapstructure:"separator"`
	IncludeMetadata bool         `mapstructure:"include_metadata"`
}

// Unit implements pkg/flowunit.Unit for the context aggregator.
type Unit struct {
	ProjectRoot string
	HTTPClient  *http.Client
}

func New(projectRoot string) *Unit {
	return &Unit{ProjectRoot: projectRoot, HTTPClient: &http.Client{}}
}

func (u *Unit) UnitID() string { return UnitID }

func (u *Unit) Run(ctx context.Context, inputs map[string]any, rawConfig map[string]any) (map[string]any, error) {
	cfg, err := decodeConfig(rawConfig)
	if err != nil {
		return nil, err
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.Separator == "" {
		cfg.Separator = "\n\n---\n\n"
	}

	var files []resolvedFile
	switch cfg.Kind {
	case InputFile:
		files = append(files, u.readFile(cfg, cfg.Path))
	case InputDirectory:
		files = u.readDirectory(ctx, cfg)
	case InputURL:
		files = append(files, u.fetchURL(ctx, cfg))
	case InputNode:
		if v, ok := inputs[cfg.NodeInputID]; ok {
			files = append(files, resolvedFile{Name: cfg.NodeInputID, Content: fmt.Sprintf("%v", v)})
		}
	default:
		return nil, cerr.NewCompilationError(cerr.StageTransformer, fmt.Sprintf("context aggregator: unknown kind %q", cfg.Kind), nil)
	}

	if cfg.Mode == ModePerFile {
		out := map[string]any{}
		for i, f := range files {
			name := variableName(cfg, f, i)
			out[name] = render(cfg, f)
		}
		return out, nil
	}

	var parts []string
	for _, f := range files {
		parts = append(parts, render(cfg, f))
	}
	return map[string]any{"text": strings.Join(parts, cfg.Separator)}, nil
}

type resolvedFile struct {
	Name         string
	RelPath      string
	Content      string
	SizeBytes    int
	ModifiedTime time.Time
	Err          error
	Truncated    bool
}

func render(cfg Config, f resolvedFile) string {
	if f.Err != nil {
		return fmt.Sprintf("[context aggregator error reading %q: %v]", f.Name, f.Err)
	}
	body := f.Content
	if cfg.IncludeMetadata {
		var meta strings.Builder
		meta.WriteString("---\n")
		fmt.Fprintf(&meta, "source_path: %s\n", f.RelPath)
		fmt.Fprintf(&meta, "source_name: %s\n", f.Name)
		fmt.Fprintf(&meta, "file_ext: %s\n", filepath.Ext(f.Name))
		fmt.Fprintf(&meta, "file_size: %d\n", f.SizeBytes)
		if !f.ModifiedTime.IsZero() {
			fmt.Fprintf(&meta, "modified_time: %s\n", f.ModifiedTime.Format(time.RFC3339))
		}
		meta.WriteString("---\n")
		body = meta.String() + body
	}
	if f.Truncated {
		body += "\n[... truncated: exceeded max_file_size ...]"
	}
	return body
}

func variableName(cfg Config, f resolvedFile, index int) string {
	switch cfg.NamingScheme {
	case NamingIndex:
		return fmt.Sprintf("file_%d", index)
	case NamingTemplate:
		name := cfg.NamingTemplate
		stem := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
		name = strings.ReplaceAll(name, "{file_name}", filepath.Base(f.Name))
		name = strings.ReplaceAll(name, "{file_ext}", strings.TrimPrefix(filepath.Ext(f.Name), "."))
		name = strings.ReplaceAll(name, "{number}", fmt.Sprintf("%d", index))
		name = strings.ReplaceAll(name, "{base}", stem)
		name = strings.ReplaceAll(name, "{relative_path}", f.RelPath)
		return name
	default: // NamingStem
		return strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
	}
}

func decodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return cfg, cerr.NewCompilationError(cerr.StageTransformer, "context aggregator: invalid config", err)
	}
	return cfg, nil
}

// TokenCount reports the tiktoken-go token count of text using the cl100k
// encoding, used to annotate metadata for downstream budgeting decisions.
func TokenCount(text string) int {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0
	}
	return len(enc.Encode(text, nil, nil))
}

func sortNames(files []resolvedFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
}
