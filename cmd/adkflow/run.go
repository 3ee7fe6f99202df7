package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kadirpekel/adkflow/internal/callback"
	"github.com/kadirpekel/adkflow/internal/extension"
	"github.com/kadirpekel/adkflow/internal/hook"
	"github.com/kadirpekel/adkflow/internal/runner"
	"github.com/kadirpekel/adkflow/pkg/flowunit/builtin"
)

// stdinResolver answers a suspended UserInputIR node by prompting on stdout
// and reading one line from stdin, honoring the caller's context so a
// node's own timeout_seconds still applies (spec 4.13 item 8).
type stdinResolver struct{ reader *bufio.Reader }

func (s stdinResolver) Resolve(ctx context.Context, req runner.UserInputRequest) (string, error) {
	fmt.Printf("\n[user input requested] %s (%s): ", req.Name, req.VariableName)

	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		// Outlives the call on a ctx timeout/cancel; os.Stdin has no portable
		// cancellable read in Go, so the read just completes into a buffer
		// nobody drains.
		line, err := s.reader.ReadString('\n')
		if err != nil {
			errCh <- err
			return
		}
		lineCh <- line
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case line := <-lineCh:
		return line, nil
	}
}

// RunCmd compiles and executes a workflow project end to end.
type RunCmd struct {
	Project string `arg:"" help:"Path to the project directory." type:"path"`
	Prompt  string `help:"User prompt passed to the root agent."`

	GlobalExtensions string `name:"global-extensions" help:"Global FlowUnit extension directory; overrides the config file's extensions.global_path." type:"path"`
	CacheSize        int    `name:"cache-size" help:"Custom-node execution result cache capacity; overrides the config file's cache.size."`

	Events      bool `help:"Print each run event as it is emitted, as JSON lines."`
	Interactive bool `help:"Answer user_input_required pauses by prompting on stdin; otherwise they resolve only via timeout_behavior."`
}

func (c *RunCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rc := cli.RunnerConfig()

	globalRoot := firstNonEmpty(c.GlobalExtensions, rc.Extensions.GlobalPath)
	if globalRoot == "" {
		globalRoot = extension.DefaultGlobalPath()
	}
	extensions := extension.New(globalRoot, extension.ProjectPath(c.Project))
	if err := builtin.RegisterAll(extensions); err != nil {
		return fmt.Errorf("registering built-in flow units: %w", err)
	}
	if err := extensions.ReloadAll(); err != nil {
		return fmt.Errorf("loading extensions: %w", err)
	}

	cacheSize := c.CacheSize
	if cacheSize <= 0 {
		cacheSize = rc.Cache.Size
	}
	r, err := runner.New(extensions, hook.NewRegistry(), callback.NewRegistry(), cacheSize)
	if err != nil {
		return fmt.Errorf("initializing runner: %w", err)
	}
	if c.Interactive {
		r.UserInput = stdinResolver{reader: bufio.NewReader(os.Stdin)}
	}

	result := r.Run(ctx, c.Project, c.Prompt)

	if c.Events {
		enc := json.NewEncoder(os.Stdout)
		for _, ev := range result.Events {
			_ = enc.Encode(ev)
		}
	}

	fmt.Println(result.Output)

	if result.Status != runner.StatusCompleted {
		return &runFailedError{status: result.Status, msg: result.Error}
	}
	return nil
}
