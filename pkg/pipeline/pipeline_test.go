package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/color"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/geometry"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/layout/layered"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/process"
)

// fakeEngine counts calls and delegates to the layered engine unless err
// is set.
type fakeEngine struct {
	calls int
	err   error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Layout(ctx context.Context, req layout.Request) (layout.Result, error) {
	f.calls++
	if f.err != nil {
		return layout.Result{}, f.err
	}
	return layered.New().Layout(ctx, req)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Layout.Engine = "layered"
	return opts
}

func TestExportScenario(t *testing.T) {
	engine := &fakeEngine{}
	res, err := NewRunner(engine, nil).Export(context.Background(), process.Sample(), testOptions())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}

	if got := len(res.Layout.Lanes); got != 2 {
		t.Errorf("lanes = %d, want 2", got)
	}
	if got := len(res.Layout.Nodes); got != 7 {
		t.Errorf("nodes = %d, want 7", got)
	}
	for id, r := range res.Layout.Lanes {
		if r.Height < geometry.MinLaneHeight {
			t.Errorf("lane %s height %v < %d", id, r.Height, geometry.MinLaneHeight)
		}
	}
	for id, pts := range res.Layout.Edges {
		if len(pts) < 2 {
			t.Errorf("edge %s has %d waypoints", id, len(pts))
		}
	}
	if res.Layout.TotalWidth <= 0 || res.Layout.TotalHeight <= 0 {
		t.Errorf("totals = %vx%v", res.Layout.TotalWidth, res.Layout.TotalHeight)
	}
	if res.Stats.Nodes != 7 || res.Stats.Edges != 6 || res.Stats.Lanes != 2 {
		t.Errorf("stats = %+v", res.Stats.Stats)
	}
	for _, s := range observability.Stages {
		if _, ok := res.Stats.Stages[s]; !ok {
			t.Errorf("no timing for stage %s", s)
		}
	}

	fill := res.Colors["customer"].Fill
	if res.Colors["customer"].Stroke != "#3B82F6" || fill == "#3B82F6" {
		t.Errorf("customer colors = %+v", res.Colors["customer"])
	}
	if !bytes.Contains(res.Document, []byte(`bioc:fill="`+fill+`"`)) {
		t.Error("document lacks the resolved lane fill")
	}
	if res.Colors["fulfilment"] != color.Resolve("", color.DefaultConfig()) {
		t.Errorf("fallback colors = %+v", res.Colors["fulfilment"])
	}
}

func TestDanglingLaneFailsBeforeLayout(t *testing.T) {
	snap := process.Sample()
	snap.Nodes[0].LaneID = "nowhere"

	engine := &fakeEngine{}
	res, err := NewRunner(engine, nil).Export(context.Background(), snap, testOptions())
	if !errors.IsIntegrity(err) {
		t.Fatalf("err = %v, want INTEGRITY", err)
	}
	if res != nil {
		t.Error("failed export returned a result")
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times", engine.calls)
	}
}

func TestStrictRejectsCycles(t *testing.T) {
	snap := process.Sample()
	// ship -> place closes a loop.
	for i := range snap.Nodes {
		switch snap.Nodes[i].ID {
		case "ship":
			snap.Nodes[i].NextIDs = append(snap.Nodes[i].NextIDs, "place")
		case "place":
			snap.Nodes[i].BeforeIDs = append(snap.Nodes[i].BeforeIDs, "ship")
		}
	}

	opts := testOptions()
	res, err := NewRunner(nil, nil).Export(context.Background(), snap, opts)
	if err != nil {
		t.Fatalf("tolerant export: %v", err)
	}
	if res.Stats.Feedback != 1 {
		t.Errorf("feedback = %d, want 1", res.Stats.Feedback)
	}

	opts.Strict = true
	if _, err := NewRunner(nil, nil).Export(context.Background(), snap, opts); !errors.IsIntegrity(err) {
		t.Errorf("strict err = %v, want INTEGRITY", err)
	}
}

func TestEngineFailureIsLayoutError(t *testing.T) {
	engine := &fakeEngine{err: fmt.Errorf("infeasible constraints")}
	_, err := NewRunner(engine, nil).Export(context.Background(), process.Sample(), testOptions())
	if !errors.IsLayout(err) {
		t.Fatalf("err = %v, want LAYOUT", err)
	}
	if _, ok := errors.GetDetails(err)["config"].(layout.Config); !ok {
		t.Errorf("details = %v, want the layout config", errors.GetDetails(err))
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		code   errors.Code
	}{
		{"MixRatio", func(o *Options) { o.Colors.MixRatio = 2 }, errors.ErrCodeInvalidConfig},
		{"Direction", func(o *Options) { o.Layout.Direction = "RL" }, errors.ErrCodeInvalidConfig},
		{"Geometry", func(o *Options) { o.Geometry.LanePadding = -1 }, errors.ErrCodeInvalidConfig},
		{"Engine", func(o *Options) { o.Layout.Engine = "neato" }, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)
			_, err := NewRunner(nil, nil).Export(context.Background(), process.Sample(), opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportIsIdempotent(t *testing.T) {
	r := NewRunner(nil, nil)
	a, err := r.Export(context.Background(), process.Sample(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Export(context.Background(), process.Sample(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Document, b.Document) {
		t.Error("documents differ between runs")
	}
	if !reflect.DeepEqual(a.Layout, b.Layout) {
		t.Error("geometry differs between runs")
	}
}

func TestExecutableProcess(t *testing.T) {
	for _, executable := range []bool{false, true} {
		opts := testOptions()
		opts.Document.Executable = executable
		res, err := NewRunner(nil, nil).Export(context.Background(), process.Sample(), opts)
		if err != nil {
			t.Fatal(err)
		}
		want := fmt.Sprintf(`isExecutable="%t"`, executable)
		if !bytes.Contains(res.Document, []byte(want)) {
			t.Errorf("document without %s", want)
		}
	}
}

func TestLayoutStopsBeforeSerialize(t *testing.T) {
	res, err := NewRunner(nil, nil).Layout(context.Background(), process.Sample(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Document != nil {
		t.Error("Layout produced a document")
	}
	if _, ok := res.Stats.Stages[observability.StageSerialize]; ok {
		t.Error("serialize stage ran")
	}
	doc := res.LayoutDocument()
	if doc.TableID != "order-intake" || len(doc.Colors) != 2 || doc.Stats.Nodes != 7 {
		t.Errorf("layout document = %+v", doc)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	stages  []observability.Stage
	failed  []observability.Stage
	exports int
}

func (h *recordingHooks) OnStageStart(_ context.Context, s observability.Stage, _ string) {
	h.stages = append(h.stages, s)
}

func (h *recordingHooks) OnStageComplete(_ context.Context, s observability.Stage, _ string, _ time.Duration, err error) {
	if err != nil {
		h.failed = append(h.failed, s)
	}
}

func (h *recordingHooks) OnExportComplete(context.Context, string, int, int, time.Duration, error) {
	h.exports++
}

func TestStageHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil, nil).Export(context.Background(), process.Sample(), testOptions()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(hooks.stages, observability.Stages) {
		t.Errorf("stages = %v", hooks.stages)
	}

	hooks.stages = nil
	_, err := NewRunner(&fakeEngine{err: fmt.Errorf("boom")}, nil).Export(context.Background(), process.Sample(), testOptions())
	if err == nil {
		t.Fatal("expected an error")
	}
	want := []observability.Stage{observability.StageBuild, observability.StageLayout}
	if !reflect.DeepEqual(hooks.stages, want) || !reflect.DeepEqual(hooks.failed, want[1:]) {
		t.Errorf("stages = %v, failed = %v", hooks.stages, hooks.failed)
	}
	if hooks.exports != 2 {
		t.Errorf("exports = %d, want 2", hooks.exports)
	}
}

func TestNewEngine(t *testing.T) {
	for _, name := range []string{"", "graphviz", "layered"} {
		e, err := NewEngine(name)
		if err != nil {
			t.Fatalf("NewEngine(%q): %v", name, err)
		}
		if name != "" && e.Name() != name {
			t.Errorf("NewEngine(%q).Name() = %q", name, e.Name())
		}
	}
	if _, err := NewEngine("neato"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v", err)
	}
	if got := strings.Join(EngineNames(), ","); got != "graphviz,layered" {
		t.Errorf("EngineNames() = %s", got)
	}
}

func TestServiceCachesDocuments(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine := &fakeEngine{}
	svc := NewService(NewRunner(engine, nil), fc, nil)
	defer svc.Close()

	first, err := svc.Export(ctx, process.Sample(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || first.Result == nil {
		t.Fatalf("first export: hit=%v", first.CacheHit)
	}

	second, err := svc.Export(ctx, process.Sample(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || !bytes.Equal(first.Data, second.Data) {
		t.Errorf("second export: hit=%v", second.CacheHit)
	}
	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}

	opts := testOptions()
	opts.Layout.Direction = layout.TopToBottom
	if out, _ := svc.Export(ctx, process.Sample(), opts); out.CacheHit {
		t.Error("different options hit the cache")
	}

	opts = testOptions()
	opts.Refresh = true
	if out, _ := svc.Export(ctx, process.Sample(), opts); out.CacheHit {
		t.Error("refresh hit the cache")
	}

	lay, err := svc.Layout(ctx, process.Sample(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if lay.CacheHit || !bytes.Contains(lay.Data, []byte(`"tableId": "order-intake"`)) {
		t.Errorf("layout output = %s", lay.Data)
	}
}

func TestServiceDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine := &fakeEngine{err: fmt.Errorf("boom")}
	svc := NewService(NewRunner(engine, nil), fc, nil)

	for range 2 {
		if _, err := svc.Export(ctx, process.Sample(), testOptions()); !errors.IsLayout(err) {
			t.Fatalf("err = %v", err)
		}
	}
	if engine.calls != 2 {
		t.Errorf("engine calls = %d, want 2", engine.calls)
	}
}
