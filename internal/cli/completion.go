package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry
// there.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "n")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "number", "duration")
	IsFile    bool     // true if the flag takes a file path
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Help: "Show version information"},
	{Long: "flips", Short: "n", Help: "Number of coins to flip", ValueName: "number"},
	{Long: "probability", Short: "p", Help: "Probability of heads", Values: []string{"0.5", "0.25", "0.75"}, ValueName: "probability"},
	{Long: "batch", Help: "Coins flipped by a batch command", Values: []string{"10", "100", "1000"}, ValueName: "number"},
	{Long: "seed", Help: "Seed for reproducible runs", ValueName: "seed"},
	{Long: "session", Help: "Session id to resume or create", ValueName: "id"},
	{Long: "db", Help: "SQLite database for persisted sessions", IsFile: true, ValueName: "file"},
	{Long: "confidence", Help: "Confidence level of the interval", Values: []string{"0.90", "0.95", "0.99"}, ValueName: "level"},
	{Long: "tui", Help: "Launch the interactive dashboard"},
	{Long: "repl", Help: "Start the interactive command prompt"},
	{Long: "serve", Help: "Serve the HTTP JSON API"},
	{Long: "addr", Help: "Listen address", Values: []string{":8080", "localhost:8080"}, ValueName: "address"},
	{Long: "experiment", Help: "Run independent sessions"},
	{Long: "runs", Help: "Number of experiment runs", Values: []string{"100", "1000", "10000"}, ValueName: "number"},
	{Long: "workers", Help: "Concurrent experiment workers", ValueName: "number"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"10s", "1m", "5m"}, ValueName: "duration"},
	{Long: "quiet", Short: "q", Help: "Print only the heads and tails counts"},
	{Long: "verbose", Short: "v", Help: "Show individual outcomes"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "config", Help: "YAML configuration file", IsFile: true, ValueName: "file"},
	{Long: "otel-endpoint", Help: "OTLP/HTTP trace endpoint", ValueName: "url"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell ("bash", "zsh"
// or "fish") to out.
func GenerateCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out)
	case "zsh":
		return generateZshCompletion(out)
	case "fish":
		return generateFishCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

// flagNames returns the dashed spellings of f, long form first.
func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func generateBashCompletion(out io.Writer) error {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		names := flagNames(f)
		opts = append(opts, names...)

		var body string
		switch {
		case f.IsFile:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case len(f.Values) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(names, "|"), body)
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for coinsim
# Add this to your ~/.bashrc or ~/.bash_completion

_coinsim_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _coinsim_completions coinsim
`, strings.Join(opts, " "), cases.String())
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer) error {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	_, err := fmt.Fprintf(out, `#compdef coinsim

# Zsh completion script for coinsim
# Add this to your ~/.zshrc or place in $fpath

_coinsim() {
    _arguments -s \
%s
}

_coinsim "$@"
`, strings.Join(args, " \\\n"))
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for coinsim",
		"# Add this to ~/.config/fish/completions/coinsim.fish",
		"",
		"# Disable file completion by default",
		"complete -c coinsim -f",
		"",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c coinsim"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
