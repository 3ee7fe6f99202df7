// Package shell implements the shell-command custom node: a glob-pattern
// command whitelist plus a timeout-bounded subprocess runner (spec section
// 4.12), ported from the original's shell_executor.py CommandValidator and
// ShellExecutor.
package shell

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// dangerousPatterns reject command-substitution and chaining syntax before
// a command ever reaches the allow-list check, matching the original's
// DANGEROUS_PATTERNS list exactly.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\(`),
	regexp.MustCompile("`"),
	regexp.MustCompile(`\$\{`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
	regexp.MustCompile(`>>`),
	regexp.MustCompile(`<<`),
	regexp.MustCompile(`\|`),
	regexp.MustCompile(`;`),
	regexp.MustCompile(`&`),
	regexp.MustCompile(`>`),
	regexp.MustCompile(`<`),
}

// Pattern is one parsed "command:args_glob" whitelist entry. An entry with
// no colon is command-only (no arguments permitted).
type Pattern struct {
	Command  string
	ArgsGlob string // "" means no-args-allowed; "*" means any args
	HasArgs  bool
}

// ValidationResult reports whether a command line was allowed to run.
type ValidationResult struct {
	Allowed        bool
	Command        string
	Arguments      []string
	MatchedPattern string
	Error          string
}

// Validator checks a command line against a whitelist of patterns.
type Validator struct {
	patterns []Pattern
}

// NewValidator parses lines of "command:args_glob" (or bare "command" for
// no-argument commands). Blank lines and lines starting with "#" are
// skipped, matching the original's comment/blank-line handling.
func NewValidator(lines []string) *Validator {
	v := &Validator{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			v.patterns = append(v.patterns, Pattern{Command: line[:idx], ArgsGlob: line[idx+1:], HasArgs: true})
		} else {
			v.patterns = append(v.patterns, Pattern{Command: line, HasArgs: false})
		}
	}
	return v
}

// Validate parses cmdLine with a POSIX-word splitter and checks it against
// the whitelist, rejecting dangerous metacharacters outright.
func (v *Validator) Validate(cmdLine string) ValidationResult {
	if strings.TrimSpace(cmdLine) == "" {
		return ValidationResult{Allowed: false, Error: "empty command"}
	}
	for _, re := range dangerousPatterns {
		if re.MatchString(cmdLine) {
			return ValidationResult{Allowed: false, Command: cmdLine, Error: fmt.Sprintf("command contains disallowed characters matching %q", re.String())}
		}
	}

	words, err := splitWords(cmdLine)
	if err != nil {
		return ValidationResult{Allowed: false, Command: cmdLine, Error: fmt.Sprintf("could not parse command: %v", err)}
	}
	if len(words) == 0 {
		return ValidationResult{Allowed: false, Error: "empty command"}
	}
	cmd, args := words[0], words[1:]
	argsJoined := strings.Join(args, " ")

	for _, p := range v.patterns {
		if p.Command != cmd {
			continue
		}
		if !p.HasArgs {
			if len(args) == 0 {
				return ValidationResult{Allowed: true, Command: cmd, Arguments: args, MatchedPattern: p.Command}
			}
			continue
		}
		if p.ArgsGlob == "*" {
			return ValidationResult{Allowed: true, Command: cmd, Arguments: args, MatchedPattern: p.Command + ":" + p.ArgsGlob}
		}
		if ok, _ := filepath.Match(p.ArgsGlob, argsJoined); ok {
			return ValidationResult{Allowed: true, Command: cmd, Arguments: args, MatchedPattern: p.Command + ":" + p.ArgsGlob}
		}
	}
	return ValidationResult{Allowed: false, Command: cmd, Arguments: args, Error: fmt.Sprintf("command %q is not in the allow-list", cmd)}
}

// splitWords is a POSIX-shell-like word splitter (Go's stdlib has no shlex
// equivalent): whitespace-separated, with single and double quote support
// and backslash escaping inside double quotes and outside quotes.
func splitWords(s string) ([]string, error) {
	var words []string
	var cur strings.Builder
	inWord := false
	var quote rune

	flush := func() {
		if inWord {
			words = append(words, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			if r == '\\' && quote == '"' && i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
				continue
			}
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == '\\' && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
			inWord = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	return words, nil
}
