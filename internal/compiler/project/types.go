// Package project loads an on-disk adkflow project (manifest + per-tab flow
// data + referenced prompt/tool/callback/schema files) into a typed, sandbox
// enforced Project value. It is the entry point of the compiler pipeline
// (spec section 4.1).
package project

// TracingConfig mirrors manifest.json's optional logging.tracing block
// (spec 6.1).
type TracingConfig struct {
	Enabled        bool   `json:"enabled"`
	File           string `json:"file"`
	ClearBeforeRun bool   `json:"clear_before_run"`
}

// LoggingConfig mirrors manifest.json's optional logging block.
type LoggingConfig struct {
	Tracing *TracingConfig `json:"tracing"`
}

// Tab is one visual-editor tab: a named, ordered partition of nodes/edges.
type Tab struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// RawNode is a node exactly as stored in manifest.json, before parsing.
type RawNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position map[string]any `json:"position"`
	Data     map[string]any `json:"data"`
	TabID    string         `json:"tabId"`
	ParentID string         `json:"parentId,omitempty"`
	Extent   string         `json:"extent,omitempty"`
	Measured map[string]any `json:"measured,omitempty"`
}

// RawEdge is an edge exactly as stored in manifest.json, before parsing.
type RawEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Animated     bool   `json:"animated,omitempty"`
}

// Manifest is the parsed top-level manifest.json document (spec 6.1).
type Manifest struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Tabs    []Tab          `json:"tabs"`
	Nodes   []RawNode      `json:"nodes"`
	Edges   []RawEdge      `json:"edges"`
	Logging *LoggingConfig `json:"logging"`
}

// FileRef is a referenced file's resolved path plus eagerly loaded content.
type FileRef struct {
	RelPath string // project-relative
	AbsPath string
	Content string
	IsCode  bool // true for tool files with executable code rather than prose
}

// Project is the fully loaded, sandboxed input to the flow parser.
type Project struct {
	Path    string
	Name    string
	Version string
	Tabs    []Tab
	Nodes   []RawNode
	Edges   []RawEdge
	Logging *LoggingConfig

	Prompts   map[string]FileRef
	Tools     map[string]FileRef
	Callbacks map[string]FileRef
	Schemas   map[string]FileRef
}
