package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lawnchairsociety/lighthouse/internal/geometry"
	"github.com/lawnchairsociety/lighthouse/internal/scene"
)

var _ Controller = (*scene.Service)(nil)

func newController() Controller {
	return scene.NewService(nil, scene.NewMemoryBinding())
}

// failingController returns errors from every mutating call
type failingController struct{}

func (failingController) Presets() []string { return []string{"Calm"} }
func (failingController) Build(ctx context.Context, name string, q geometry.Quality) (*scene.Result, error) {
	return nil, errors.New("disk full")
}
func (failingController) Cleanup(ctx context.Context) (int, error) { return 0, errors.New("disk full") }
func (failingController) History(ctx context.Context, limit int) ([]scene.Record, error) {
	return nil, errors.New("disk full")
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs int
	}{
		{"", "", 0},
		{"   ", "", 0},
		{"presets", "presets", 0},
		{"BUILD Storm high", "build", 2},
		{"  history   5 ", "history", 1},
	}
	for _, tt := range tests {
		cmd := ParseCommand(tt.input)
		if cmd.Name != tt.wantName || len(cmd.Args) != tt.wantArgs {
			t.Errorf("ParseCommand(%q) = %q %v, want %q with %d args", tt.input, cmd.Name, cmd.Args, tt.wantName, tt.wantArgs)
		}
	}

	// Arguments keep their case
	if cmd := ParseCommand("build Storm"); cmd.Args[0] != "Storm" {
		t.Errorf("arg = %q, want Storm", cmd.Args[0])
	}
}

func TestIsQuit(t *testing.T) {
	for input, want := range map[string]bool{"quit": true, "EXIT": true, "build": false, "": false} {
		if got := ParseCommand(input).IsQuit(); got != want {
			t.Errorf("ParseCommand(%q).IsQuit() = %v, want %v", input, got, want)
		}
	}
}

func run(ctl Controller, line string) string {
	return ParseCommand(line).Execute(context.Background(), ctl)
}

func TestExecuteReplies(t *testing.T) {
	ctl := newController()

	tests := []struct {
		line string
		want string
	}{
		{"help", "build <preset>"},
		{"presets", "Presets: Shutter, Calm, Storm"},
		{"build", "Usage: build"},
		{"build lagoon", `Unknown preset "lagoon"`},
		{"build calm ultra", `Unknown quality "ultra"`},
		{"history", "No scenes built yet."},
		{"history zero", "Usage: history"},
		{"cleanup", "Nothing to clean up."},
		{"dance", "Unknown command: dance"},
		{"quit", "Goodbye."},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := run(ctl, tt.line); !strings.Contains(got, tt.want) {
				t.Errorf("Execute(%q) = %q, want it to contain %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExecuteBuildCycle(t *testing.T) {
	ctl := newController()

	reply := run(ctl, "build calm")
	if !strings.HasPrefix(reply, "Built ") || !strings.Contains(reply, "preset=Calm") || !strings.Contains(reply, "quality=draft") {
		t.Errorf("build reply = %q", reply)
	}

	reply = run(ctl, "build storm high")
	if !strings.Contains(reply, "quality=high") || !strings.Contains(reply, "cleaned up 1") {
		t.Errorf("second build reply = %q", reply)
	}

	history := run(ctl, "history 5")
	lines := strings.Split(history, "\n")
	if len(lines) != 2 {
		t.Fatalf("history lines = %d, want 2: %q", len(lines), history)
	}
	if !strings.Contains(lines[0], "preset=Storm") || !strings.HasSuffix(lines[0], "[live]") {
		t.Errorf("newest history line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[removed]") {
		t.Errorf("oldest history line = %q", lines[1])
	}

	if got := run(ctl, "cleanup"); got != "Removed 1 scene(s)." {
		t.Errorf("cleanup reply = %q", got)
	}
}

func TestExecuteControllerErrors(t *testing.T) {
	ctl := failingController{}

	for line, want := range map[string]string{
		"build calm": "Build failed: disk full",
		"cleanup":    "Cleanup failed: disk full",
		"history":    "History failed: disk full",
	} {
		if got := run(ctl, line); got != want {
			t.Errorf("Execute(%q) = %q, want %q", line, got, want)
		}
	}
}
