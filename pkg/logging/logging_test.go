package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ritzau/shadergraph/pkg/graph"
	"github.com/ritzau/shadergraph/pkg/shader"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("tree", "Material").Info("converted", "nodes", 3, "label", "two words")

	line := buf.String()
	for _, want := range []string{"[INFO]", "converted |", "tree=Material", "nodes=3", `label="two words"`} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestCompactHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info record should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestCompactHandlerGraphValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil))

	tree := graph.NewTree(shader.NewCatalog(shader.Version{Major: 4, Minor: 1}))
	n := tree.MustNew(shader.KindPrincipled)
	in, _ := n.Input("Roughness")

	log.WithGroup("fold").Info("folded", "into", n, "socket", in)

	line := buf.String()
	for _, want := range []string{"fold.into=" + n.String(), "fold.socket=" + in.String()} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "&{") {
		t.Errorf("node rendered as a struct: %q", line)
	}
}

func TestCompactHandlerRunFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil))

	log.InfoContext(WithRunID(context.Background(), "0123456789abcdef"), "step done")

	if !strings.Contains(buf.String(), "run=01234567 step done") {
		t.Errorf("run id not in header: %q", buf.String())
	}
}

func TestJSONOutputCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	SetJSONOutput(slog.LevelInfo)
	defer SetOutput(&bytes.Buffer{}, slog.LevelInfo)

	InfoContext(WithRunID(context.Background(), "fixed-run-id-0002"), "converted", "nodes", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %v: %q", err, buf.String())
	}
	if rec["run"] != "fixed-run-id-0002" {
		t.Errorf("run = %v, want fixed-run-id-0002", rec["run"])
	}
	if rec["nodes"] != float64(3) {
		t.Errorf("nodes = %v, want 3", rec["nodes"])
	}
}

func TestRunTagsContext(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelDebug)
	defer SetOutput(&bytes.Buffer{}, slog.LevelInfo)

	var seen string
	err := Run(context.Background(), "convert", func(ctx context.Context) error {
		seen = GetRunID(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 36 {
		t.Fatalf("expected a uuid run id, got %q", seen)
	}
	if !strings.Contains(buf.String(), "run="+seen[:8]) {
		t.Errorf("log output missing shortened run id: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "convert completed") {
		t.Errorf("log output missing completion: %q", buf.String())
	}
}

func TestRunKeepsExistingIDAndError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	defer SetOutput(&bytes.Buffer{}, slog.LevelInfo)

	boom := errors.New("boom")
	ctx := WithRunID(context.Background(), "fixed-run-id-0001")
	err := Run(ctx, "convert", func(ctx context.Context) error {
		if got := GetRunID(ctx); got != "fixed-run-id-0001" {
			t.Errorf("run id replaced: %q", got)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !strings.Contains(buf.String(), "convert failed") || !strings.Contains(buf.String(), `error="boom"`) {
		t.Errorf("failure not logged: %q", buf.String())
	}
}
