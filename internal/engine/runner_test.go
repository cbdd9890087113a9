package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agentscope/internal/model"
	"agentscope/internal/oracle"
	"agentscope/internal/registrar"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
	"agentscope/internal/store/memory"
)

func writeEvents(t *testing.T, records []model.EventRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, rec := range records {
		require.NoError(t, enc.Encode(rec))
	}
	return path
}

func TestRunnerProcessesFile(t *testing.T) {
	eng, mem := newTestEngine(t)

	path := writeEvents(t, []model.EventRecord{
		sellSwap(t, "0x01", baseTS, 10, 10),
		sellSwap(t, "0x02", baseTS+60, 10, 20),
	})

	statePath := filepath.Join(t.TempDir(), "state.json")
	runner := NewRunner(RunConfig{
		StateStore: &FileStateStore{Path: statePath},
	}, eng, mem, zap.NewNop())
	require.NoError(t, runner.Run(context.Background(), path))

	econ := load[model.TokenEconomics](t, mem, store.KindTokenEconomics, testToken)
	require.EqualValues(t, 2, econ.TotalTransactions)

	last, ok, err := (&FileStateStore{Path: statePath}).Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, baseTS+60, last)
}

func TestRunnerResumesBehindFence(t *testing.T) {
	mem := memory.NewStore()
	statePath := filepath.Join(t.TempDir(), "state.json")
	stateStore := &FileStateStore{Path: statePath}

	path := writeEvents(t, []model.EventRecord{
		sellSwap(t, "0x01", baseTS, 10, 10),
	})
	eng := New(Config{USDPairs: oracle.NewUSDPairSet([]string{testToken})}, mem, nil, nil, nil, zap.NewNop())
	runner := NewRunner(RunConfig{StateStore: stateStore}, eng, mem, zap.NewNop())
	require.NoError(t, runner.Run(context.Background(), path))

	// Rerunning the same file with a fresh engine applies nothing.
	eng = New(Config{USDPairs: oracle.NewUSDPairSet([]string{testToken})}, mem, nil, nil, nil, zap.NewNop())
	runner = NewRunner(RunConfig{StateStore: stateStore}, eng, mem, zap.NewNop())
	require.NoError(t, runner.Run(context.Background(), path))

	econ := load[model.TokenEconomics](t, mem, store.KindTokenEconomics, testToken)
	require.EqualValues(t, 1, econ.TotalTransactions)
}

func TestRunnerRecomputeFromOverridesState(t *testing.T) {
	mem := memory.NewStore()
	path := writeEvents(t, []model.EventRecord{
		sellSwap(t, "0x01", baseTS, 10, 10),
		sellSwap(t, "0x02", baseTS+60, 10, 20),
	})

	eng := New(Config{USDPairs: oracle.NewUSDPairSet([]string{testToken})}, mem, nil, nil, nil, zap.NewNop())
	runner := NewRunner(RunConfig{RecomputeFrom: baseTS + 60}, eng, mem, zap.NewNop())
	require.NoError(t, runner.Run(context.Background(), path))

	econ := load[model.TokenEconomics](t, mem, store.KindTokenEconomics, testToken)
	require.EqualValues(t, 1, econ.TotalTransactions)
}

func TestLaunchFlowRegistersWatchSources(t *testing.T) {
	mem := memory.NewStore()
	regPath := filepath.Join(t.TempDir(), "watch.jsonl")
	eng := New(Config{}, mem, nil, nil, registrar.NewJsonlRegistrar(regPath), zap.NewNop())
	ctx := context.Background()

	launched := record(t, model.EventLaunched, "0xa1", baseTS, model.LaunchedEventData{
		Token: testToken, Pair: testPair,
	})
	require.NoError(t, eng.Apply(ctx, launched))

	call := record(t, model.EventLaunchCall, "0xa1", baseTS, model.LaunchCallData{
		Name:   "Helper Agent",
		Ticker: "HELP",
		URLs:   []string{"https://example.com", "", "https://example.org"},
		Cores:  []uint8{0, 2},
	})
	call.LogIndex = 1
	require.NoError(t, eng.Apply(ctx, call))

	launch := load[model.TokenLaunch](t, mem, store.KindTokenLaunch, "0xa1")
	require.Equal(t, resolve.Address(testToken), launch.Token)
	require.Equal(t, resolve.Address(testPair), launch.Pair)
	require.Equal(t, "Helper Agent", launch.Name)
	require.Equal(t, []string{"https://example.com", "https://example.org"}, launch.URLs)

	data, err := os.ReadFile(regPath)
	require.NoError(t, err)
	require.Contains(t, string(data), testPair)
	require.Contains(t, string(data), testToken)
}

func TestLaunchCallWithoutNameRejected(t *testing.T) {
	eng, mem := newTestEngine(t)

	call := record(t, model.EventLaunchCall, "0xa2", baseTS, model.LaunchCallData{Ticker: "HELP"})
	require.NoError(t, eng.Apply(context.Background(), call))
	require.Equal(t, 0, mem.Count(store.KindTokenLaunch))
}

func TestLaunchCallBeforeLaunchedEvent(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	call := record(t, model.EventLaunchCall, "0xa3", baseTS, model.LaunchCallData{
		Name: "Early Agent", Ticker: "EARLY",
	})
	require.NoError(t, eng.Apply(ctx, call))

	launched := record(t, model.EventLaunched, "0xa3", baseTS, model.LaunchedEventData{
		Token: testToken, Pair: testPair,
	})
	launched.LogIndex = 1
	require.NoError(t, eng.Apply(ctx, launched))

	launch := load[model.TokenLaunch](t, mem, store.KindTokenLaunch, "0xa3")
	require.Equal(t, "Early Agent", launch.Name)
	require.Equal(t, resolve.Address(testPair), launch.Pair)
}
