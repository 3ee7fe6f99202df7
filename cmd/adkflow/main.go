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

// Command adkflow runs compiled visual-editor workflow projects.
//
// Usage:
//
//	adkflow run ./my-project --prompt "Summarize the attached report"
//	adkflow validate ./my-project
//	adkflow schema > workflow.schema.json
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/adkflow/internal/runnerconfig"
	"github.com/kadirpekel/adkflow/pkg/logger"
)

// CLI defines the command-line interface. Logging/cache/extension flags
// override the ambient runnerconfig.Config loaded from --config, which in
// turn overrides runnerconfig.Default() (spec 10.3).
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Compile and run a workflow project."`
	Validate ValidateCmd `cmd:"" help:"Compile a workflow project and report validation issues."`
	Schema   SchemaCmd   `cmd:"" help:"Generate JSON Schema for the project manifest."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config       string `help:"Path to the ambient runner config file (koanf/YAML)." type:"path"`
	ConfigSource string `name:"config-source" help:"Config backend: file, consul, etcd, zookeeper." default:"file"`

	LogLevel  string `help:"Log level (debug, info, warn, error); overrides the config file."`
	LogFile   string `help:"Log file path (empty = stderr); overrides the config file."`
	LogFormat string `help:"Log format (simple, verbose, or custom); overrides the config file."`

	runnerConfig *runnerconfig.Config
}

// RunnerConfig returns the ambient config loaded in main, falling back to
// defaults if called before parsing (e.g. from tests).
func (c *CLI) RunnerConfig() *runnerconfig.Config {
	if c.runnerConfig == nil {
		return runnerconfig.Default()
	}
	return c.runnerConfig
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("adkflow version %s\n", version)
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("adkflow"),
		kong.Description("Runtime for compiled visual-editor agent workflows."),
		kong.UsageOnError(),
	)

	source, err := runnerconfig.ParseSourceType(cli.ConfigSource)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adkflow: %v\n", err)
		os.Exit(1)
	}
	rc, err := runnerconfig.Load(runnerconfig.LoaderOptions{Source: source, Path: cli.Config})
	if err != nil {
		fmt.Fprintf(os.Stderr, "adkflow: loading config: %v\n", err)
		os.Exit(1)
	}
	cli.runnerConfig = rc

	logLevel := firstNonEmpty(cli.LogLevel, rc.Log.Level)
	logFormat := firstNonEmpty(cli.LogFormat, rc.Log.Format)
	logFile := firstNonEmpty(cli.LogFile, rc.Log.File)

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		level = 0
	}
	out := os.Stderr
	if logFile != "" {
		f, closeFn, err := logger.OpenLogFile(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adkflow: opening log file: %v\n", err)
			os.Exit(1)
		}
		defer closeFn()
		out = f
	}
	logger.Init(level, out, logFormat)

	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "adkflow: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}
