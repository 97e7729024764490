// Package cli provides the command-line front-ends of coinsim: the
// interactive REPL, one-shot runs and their terminal output.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/ui"
)

// DefaultHistoryLimit is the number of commands shown by "history".
const DefaultHistoryLimit = 20

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout is the maximum duration of each command. Zero disables it.
	Timeout time.Duration
	// Verbose echoes individual outcomes after each flip.
	Verbose bool
	// MaxFlips bounds "flip <n>". Zero means no bound.
	MaxFlips int
}

// REPL represents an interactive coin flipping session.
type REPL struct {
	config  REPLConfig
	session Session
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a new REPL driving sess.
func NewREPL(sess Session, config REPLConfig) *REPL {
	return &REPL{
		config:  config,
		session: sess,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start begins the interactive REPL session. It reads commands until the
// user exits, EOF is reached or ctx is cancelled.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)

	for {
		if ctx.Err() != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
		fmt.Fprint(r.out, ui.ColorGreen()+"coin> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}

		input = strings.TrimSpace(input)
		if input != "" && !r.processCommand(ctx, input) {
			return
		}
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s🪙 Coin Flip Simulator - Interactive Mode%s             %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "Session %s%s%s, p(heads) = %s\n\n",
		ui.ColorYellow(), r.session.ID(), ui.ColorReset(), format.FormatProportion(r.session.Probability()))
}

// printHelp displays available commands.
func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sflip%s          - Flip one coin\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sflip <n>%s      - Flip n coins (or just type n)\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sbatch%s         - Flip %d coins\n", ui.ColorYellow(), ui.ColorReset(), r.session.BatchSize())
	fmt.Fprintf(r.out, "  %sreset%s         - Clear the tally\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstats%s         - Display the summary\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %schart%s         - Compare observed and theoretical frequencies\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shistory%s       - Display the latest commands\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s          - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s  - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "flip", "f":
		r.cmdFlip(ctx, args)
	case "batch", "b":
		r.execute(ctx, orchestration.FlipBatch())
	case "reset", "r":
		r.execute(ctx, orchestration.Reset())
	case "stats", "st":
		DisplaySummary(r.out, r.session.Snapshot().Summary)
		fmt.Fprintln(r.out)
	case "chart":
		DisplayCharts(r.out, r.session.Snapshot().Summary)
		fmt.Fprintln(r.out)
	case "history":
		r.cmdHistory(ctx)
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		// A bare number flips that many coins.
		if _, err := strconv.Atoi(cmd); err == nil {
			r.cmdFlip(ctx, parts)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
		}
	}

	return true
}

// cmdFlip handles "flip" and "flip <n>".
func (r *REPL) cmdFlip(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.execute(ctx, orchestration.FlipOnce())
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		fmt.Fprintf(r.out, "%sInvalid count: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	if r.config.MaxFlips > 0 && n > r.config.MaxFlips {
		fmt.Fprintf(r.out, "%sAt most %s coins per command.%s\n",
			ui.ColorRed(), format.FormatCount(uint64(r.config.MaxFlips)), ui.ColorReset())
		return
	}
	r.execute(ctx, orchestration.FlipN(n))
}

func (r *REPL) execute(ctx context.Context, cmd orchestration.Command) {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	snap, err := r.session.Execute(ctx, cmd)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	if cmd.Kind == orchestration.KindReset {
		fmt.Fprintf(r.out, "Tally cleared.\n")
		return
	}
	DisplayFlip(r.out, snap, r.config.Verbose)
	fmt.Fprintf(r.out, "Total: %s flips, heads %s, tails %s\n",
		format.FormatCount(snap.State.TotalFlips()),
		format.FormatPercent(snap.Summary.PHeads), format.FormatPercent(snap.Summary.PTails))
}

func (r *REPL) cmdHistory(ctx context.Context) {
	history, err := r.session.History(ctx, DefaultHistoryLimit)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	DisplayHistory(r.out, history)
}
