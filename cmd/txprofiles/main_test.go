package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"gsweb/internal/api"
	"gsweb/internal/logger"
	"gsweb/internal/models"
	"gsweb/internal/partition"
	"gsweb/internal/profiles"
	"gsweb/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, initial ...models.TxProfile) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(initial...)
	service := profiles.NewService(st, partition.DefaultAxis(), logger.Nop())
	server := httptest.NewServer(api.New(service, logger.Nop(), nil))
	t.Cleanup(server.Close)
	return server, st
}

func runCLI(t *testing.T, server *httptest.Server, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--client.base_url", server.URL, "--log.level", "error"}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func stored(t *testing.T, st *store.MemoryStore) [][2]int {
	t.Helper()
	p, err := st.Load(context.Background())
	require.NoError(t, err)
	out := make([][2]int, 0, len(p))
	for _, s := range p {
		out = append(out, [2]int{s.RangeStart, s.RangeEnd})
	}
	return out
}

func TestShow_EmptyStoreShowsDefault(t *testing.T) {
	server, st := newAPI(t)

	code, out, _ := runCLI(t, server, "show")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "999-2000")
	assert.Contains(t, out, "100.0%")
	assert.Empty(t, stored(t, st), "show never saves")
}

func TestSplitMergeRoundTrip(t *testing.T) {
	server, st := newAPI(t)

	code, _, errOut := runCLI(t, server, "split", "0")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, [][2]int{{999, 1499}, {1500, 2000}}, stored(t, st))

	code, _, errOut = runCLI(t, server, "merge", "1")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, [][2]int{{999, 2000}}, stored(t, st))
}

func TestDrag(t *testing.T) {
	server, st := newAPI(t, partition.DefaultAxis().Ladder()...)
	axis := partition.DefaultAxis()

	code, _, errOut := runCLI(t, server, "drag", "6", "0.7")
	require.Equal(t, exitOK, code, errOut)

	// 999 + 0.7*1001 = 1699.7 snaps to 1700.
	got := stored(t, st)
	assert.Equal(t, [2]int{1401, 1700}, got[6])
	assert.Equal(t, [2]int{1701, 1800}, got[7])
	require.NoError(t, axis.Check(mustLoad(t, st)))

	code, _, _ = runCLI(t, server, "drag", "8", "0.5")
	assert.Equal(t, exitError, code, "no boundary after the last segment")
}

func TestSet(t *testing.T) {
	server, st := newAPI(t, partition.DefaultAxis().Ladder()...)

	code, _, errOut := runCLI(t, server, "set", "2", "bitrate=4500", "gi=short")
	require.Equal(t, exitOK, code, errOut)
	p := mustLoad(t, st)
	assert.Equal(t, 4500, p[2].Bitrate)
	assert.Equal(t, "short", p[2].GI)

	code, _, _ = runCLI(t, server, "set", "2", "range_start=1000")
	assert.Equal(t, exitUsage, code)

	code, _, errOut = runCLI(t, server, "set", "2", "mcs=12")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "mcs")
	assert.Equal(t, 4500, mustLoad(t, st)[2].Bitrate)
}

func TestSet_LeadingZerosAreDecimal(t *testing.T) {
	server, st := newAPI(t, partition.DefaultAxis().Ladder()...)

	code, _, errOut := runCLI(t, server, "set", "02", "bitrate=0100", "mcs=07", "qp_delta=-012")
	require.Equal(t, exitOK, code, errOut)
	p := mustLoad(t, st)
	assert.Equal(t, 100, p[2].Bitrate)
	assert.Equal(t, 7, p[2].MCS)
	assert.Equal(t, -12, p[2].QpDelta)
	assert.Equal(t, 7000, p[3].Bitrate, "segment 02 is segment 2")

	code, _, errOut = runCLI(t, server, "split", "010")
	assert.Equal(t, exitError, code, "segment 10 does not exist")
	assert.Contains(t, errOut, "segment 10")
}

func TestDryRunDoesNotSave(t *testing.T) {
	server, st := newAPI(t)

	code, out, _ := runCLI(t, server, "--dry-run", "split", "0")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "1500-2000")
	assert.Contains(t, out, "dry run")
	assert.Empty(t, stored(t, st))
}

func TestReset(t *testing.T) {
	server, st := newAPI(t)

	code, _, _ := runCLI(t, server, "reset")
	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stored(t, st))

	code, _, errOut := runCLI(t, server, "reset", "--yes")
	require.Equal(t, exitOK, code, errOut)
	assert.Len(t, stored(t, st), 9)
	assert.Equal(t, [2]int{1801, 2000}, stored(t, st)[8])
}

func TestUsageErrors(t *testing.T) {
	server, _ := newAPI(t)

	for _, args := range [][]string{
		{},
		{"bogus"},
		{"split"},
		{"split", "x"},
		{"drag", "0"},
		{"drag", "0", "abc"},
		{"set", "0", "bitrate"},
	} {
		code, _, _ := runCLI(t, server, args...)
		assert.Equal(t, exitUsage, code, "args %v", args)
	}
}

func TestUnreachableAPI(t *testing.T) {
	server, _ := newAPI(t)
	server.Close()

	code, _, errOut := runCLI(t, server, "--client.timeout", "200ms", "show")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "unavailable")
}

func TestWatch_StopsOnCancel(t *testing.T) {
	server, _ := newAPI(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"--client.base_url", server.URL, "watch"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "999-2000")
}

func mustLoad(t *testing.T, st *store.MemoryStore) partition.Partition {
	t.Helper()
	p, err := st.Load(context.Background())
	require.NoError(t, err)
	return partition.Partition(p)
}
