// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runnerconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/consul"
	"github.com/knadh/koanf/providers/etcd"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"
)

// SourceType names where the config document is read from (spec 10.3).
type SourceType string

const (
	SourceFile      SourceType = "file"
	SourceConsul    SourceType = "consul"
	SourceEtcd      SourceType = "etcd"
	SourceZookeeper SourceType = "zookeeper"
)

// ParseSourceType validates a user-supplied --config-source value.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceFile, "":
		return SourceFile, nil
	case SourceConsul:
		return SourceConsul, nil
	case SourceEtcd:
		return SourceEtcd, nil
	case SourceZookeeper, "zk":
		return SourceZookeeper, nil
	default:
		return "", fmt.Errorf("invalid config source: %s (valid: file, consul, etcd, zookeeper)", s)
	}
}

// LoaderOptions configures Load. Path is a file path for SourceFile, or the
// remote key/znode path for the other backends.
type LoaderOptions struct {
	Source    SourceType
	Path      string
	Endpoints []string
}

func (o *LoaderOptions) applyDefaults() {
	if o.Source == "" {
		o.Source = SourceFile
	}
	if len(o.Endpoints) == 0 {
		switch o.Source {
		case SourceConsul:
			o.Endpoints = []string{"localhost:8500"}
		case SourceEtcd:
			o.Endpoints = []string{"localhost:2379"}
		case SourceZookeeper:
			o.Endpoints = []string{"localhost:2181"}
		}
	}
}

// Load reads the ambient runner configuration document from opts.Source,
// expands ${VAR}/${VAR:-default} references against the process
// environment, and decodes it into a defaulted, validated Config.
//
// A missing file at the default path is not an error: Load falls back to
// Default() so a bare `adkflow run` works without any config file.
func Load(opts LoaderOptions) (*Config, error) {
	opts.applyDefaults()

	if opts.Source == SourceFile && opts.Path == "" {
		return Default(), nil
	}

	k := koanf.New(".")
	var provider koanf.Provider
	var parser koanf.Parser = yaml.Parser()

	switch opts.Source {
	case SourceFile:
		provider = file.Provider(opts.Path)

	case SourceConsul:
		cfg := api.DefaultConfig()
		cfg.Address = opts.Endpoints[0]
		provider = consul.Provider(consul.Config{Cfg: cfg, Key: opts.Path})
		parser = nil

	case SourceEtcd:
		provider = etcd.Provider(etcd.Config{
			Endpoints:   opts.Endpoints,
			DialTimeout: 5 * time.Second,
			Key:         opts.Path,
		})
		parser = nil

	case SourceZookeeper:
		zkProvider, err := newZookeeperProvider(opts.Endpoints, opts.Path)
		if err != nil {
			return nil, fmt.Errorf("runnerconfig: %w", err)
		}
		provider = zkProvider

	default:
		return nil, fmt.Errorf("runnerconfig: unsupported source %q", opts.Source)
	}

	if err := k.Load(provider, parser); err != nil {
		return nil, fmt.Errorf("runnerconfig: loading from %s: %w", opts.Source, err)
	}

	expanded, ok := expandTree(k.Raw()).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("runnerconfig: unexpected document shape after env expansion")
	}
	expandedK := koanf.New(".")
	if err := expandedK.Load(confmap.Provider(expanded, "."), nil); err != nil {
		return nil, fmt.Errorf("runnerconfig: reloading expanded document: %w", err)
	}

	cfg := Default()
	if err := expandedK.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "yaml",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "yaml",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}); err != nil {
		return nil, fmt.Errorf("runnerconfig: decoding: %w", err)
	}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("runnerconfig: %w", err)
	}
	return cfg, nil
}
