// Package command parses and executes control panel commands.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/preset"
	"github.com/lawnchairsociety/lighthouse/internal/scene"
)

// DefaultHistory is the number of records `history` shows without an argument.
const DefaultHistory = 10

// Controller is what commands act on. *scene.Service satisfies it.
type Controller interface {
	Presets() []string
	Build(ctx context.Context, presetName string, q geometry.Quality) (*scene.Result, error)
	Cleanup(ctx context.Context) (int, error)
	History(ctx context.Context, limit int) ([]scene.Record, error)
}

type Command struct {
	Name string
	Args []string
}

// RequireArgs checks if the command has at least the minimum number of arguments
// Returns an error with the usage message if not enough arguments are provided
func (c *Command) RequireArgs(min int, usage string) error {
	if len(c.Args) < min {
		return errors.New(usage)
	}
	return nil
}

// ParseCommand splits a line into a lower-case name and its arguments.
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Name: "", Args: []string{}}
	}

	return &Command{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// IsQuit reports whether the command ends the session.
func (c *Command) IsQuit() bool {
	return c.Name == "quit" || c.Name == "exit"
}

// Execute runs the command and returns the reply text.
func (c *Command) Execute(ctx context.Context, ctl Controller) string {
	switch c.Name {
	case "":
		return ""
	case "help", "?":
		return c.executeHelp()
	case "presets", "list":
		return c.executePresets(ctl)
	case "build", "b":
		return c.executeBuild(ctx, ctl)
	case "cleanup", "clean":
		return c.executeCleanup(ctx, ctl)
	case "history", "h":
		return c.executeHistory(ctx, ctl)
	case "quit", "exit":
		return "Goodbye."
	default:
		return fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", c.Name)
	}
}

func (c *Command) executeHelp() string {
	return `Commands:
  presets                   - List available presets
  build <preset> [quality]  - Build a preset (quality: draft or high, default draft)
  cleanup                   - Remove the scenes created so far
  history [n]               - Show the last n builds (default 10)
  help                      - Show this message
  quit                      - Close the connection`
}

func (c *Command) executePresets(ctl Controller) string {
	return "Presets: " + strings.Join(ctl.Presets(), ", ")
}

func (c *Command) executeBuild(ctx context.Context, ctl Controller) string {
	if err := c.RequireArgs(1, "Usage: build <preset> [draft|high]"); err != nil {
		return err.Error()
	}

	quality := geometry.QualityDraft
	if len(c.Args) > 1 {
		q, err := geometry.ParseQuality(c.Args[1])
		if err != nil {
			return fmt.Sprintf("Unknown quality %q. Use draft or high.", c.Args[1])
		}
		quality = q
	}

	res, err := ctl.Build(ctx, c.Args[0], quality)
	if err != nil {
		if errors.Is(err, preset.ErrUnknownPreset) {
			return fmt.Sprintf("Unknown preset %q. Available: %s", c.Args[0], strings.Join(ctl.Presets(), ", "))
		}
		return fmt.Sprintf("Build failed: %v", err)
	}

	reply := "Built " + res.Record.Summary()
	if res.Removed > 0 {
		reply += fmt.Sprintf(" (cleaned up %d)", res.Removed)
	}
	return reply
}

func (c *Command) executeCleanup(ctx context.Context, ctl Controller) string {
	n, err := ctl.Cleanup(ctx)
	if err != nil {
		return fmt.Sprintf("Cleanup failed: %v", err)
	}
	if n == 0 {
		return "Nothing to clean up."
	}
	return fmt.Sprintf("Removed %d scene(s).", n)
}

func (c *Command) executeHistory(ctx context.Context, ctl Controller) string {
	limit := DefaultHistory
	if len(c.Args) > 0 {
		n, err := strconv.Atoi(c.Args[0])
		if err != nil || n <= 0 {
			return "Usage: history [n] (n must be a positive number)"
		}
		limit = n
	}

	records, err := ctl.History(ctx, limit)
	if err != nil {
		return fmt.Sprintf("History failed: %v", err)
	}
	if len(records) == 0 {
		return "No scenes built yet."
	}

	var sb strings.Builder
	for i, r := range records {
		if i > 0 {
			sb.WriteByte('\n')
		}
		state := "live"
		if !r.Live() {
			state = "removed"
		}
		fmt.Fprintf(&sb, "%s %s [%s]", r.CreatedAt.Format("2006-01-02 15:04:05"), r.Summary(), state)
	}
	return sb.String()
}
