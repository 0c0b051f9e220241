package execution

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/kchain/kconfig"
	"github.com/birdayz/kchain/kdag"
	"github.com/birdayz/kchain/kdata"
	"github.com/birdayz/kchain/kunit"
)

var rawTPC = kdata.MustDataType("RAW", "TPC")

// mockUnit is a configurable unit. Nil funcs are no-ops.
type mockUnit struct {
	name      string
	calls     *[]string
	processFn func(ctx context.Context, evt *kunit.Event, out kunit.Output) error
	initFn    func(env kunit.Environment, args []string) error
	deinitFn  func() error
}

func (m *mockUnit) Init(env kunit.Environment, args []string) error {
	if m.initFn != nil {
		return m.initFn(env, args)
	}
	return nil
}

func (m *mockUnit) Deinit() error {
	if m.calls != nil {
		*m.calls = append(*m.calls, "deinit:"+m.name)
	}
	if m.deinitFn != nil {
		return m.deinitFn()
	}
	return nil
}

func (m *mockUnit) ProcessEvent(ctx context.Context, evt *kunit.Event, out kunit.Output) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name)
	}
	if m.processFn != nil {
		return m.processFn(ctx, evt, out)
	}
	return nil
}

type mockSource struct {
	mockUnit
	estimate kunit.SizeEstimate
}

func (m *mockSource) OutputDataType() kdata.DataType     { return rawTPC }
func (m *mockSource) OutputDataSize() kunit.SizeEstimate { return m.estimate }

type mockProcessor struct {
	mockSource
	inputs []kdata.DataType
}

func (m *mockProcessor) InputDataTypes() []kdata.DataType { return m.inputs }

type mockSink struct {
	mockUnit
	inputs []kdata.DataType
}

func (m *mockSink) InputDataTypes() []kdata.DataType { return m.inputs }

type chainDef struct {
	name    string
	kind    string
	sources []string
	args    string
}

// newTestPipeline registers the configurations, builds the task list of
// root and installs it in a fresh pipeline.
func newTestPipeline(t *testing.T, units *kunit.Registry, root string, defs ...chainDef) *Pipeline {
	t.Helper()
	reg := kconfig.NewRegistry()
	for _, d := range defs {
		cfg, err := kconfig.New(d.name, d.kind, d.sources, d.args)
		assert.NoError(t, err)
		assert.NoError(t, reg.Add(cfg))
	}
	b := kdag.NewBuilder(reg)
	assert.NoError(t, b.BuildTaskList(root))
	list, err := b.Build()
	assert.NoError(t, err)

	p, err := NewPipeline(PipelineConfig{Units: units})
	assert.NoError(t, err)
	assert.NoError(t, p.LoadConfiguration())
	assert.NoError(t, p.SetTasks(list))
	return p
}
