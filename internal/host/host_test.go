package host

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordtimeline/internal/control"
	"recordtimeline/internal/dataset"
	"recordtimeline/internal/mapper"
)

const header = "activityid,subject,scheduledstart,scheduledend\n"

type memSink struct {
	mu     sync.Mutex
	writes []string
}

func (s *memSink) Write(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, string(b))
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *memSink) latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return ""
	}
	return s.writes[len(s.writes)-1]
}

type countingSource struct {
	dataset.Source
	loads int
}

func (c *countingSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	c.loads++
	return c.Source.Load(ctx)
}

func writeCSV(t *testing.T, path string, rows ...string) {
	t.Helper()
	body := header + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTimelineControl(refresh bool) control.Control {
	return control.NewTimeline(control.TimelineOptions{
		Mapper:          mapper.DefaultConfig(),
		RefreshOnUpdate: refresh,
		Logger:          zerolog.Nop(),
	})
}

func TestHost_RunOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	writeCSV(t, path,
		"a1,Kickoff,01/06/2024 10:00 AM,01/06/2024 11:00 AM",
		"a2,Site visit,01/06/2024 10:00 AM,03/06/2024 9:00 AM",
		"a3,,02/06/2024 10:00 AM,",
	)

	sink := &memSink{}
	h := New(Options{Width: 900}, dataset.OpenCSV(path, dataset.CSVOptions{IDColumn: "activityid"}),
		newTimelineControl(false), sink, zerolog.Nop())

	require.NoError(t, h.Run(context.Background()))
	assert.Equal(t, 2, h.Updates(), "one loading update, one real update")
	require.Equal(t, 1, sink.count())

	out := sink.latest()
	assert.Contains(t, out, `width="900"`)
	assert.Contains(t, out, `<g class="item point" id="item-1">`)
	assert.Contains(t, out, `<g class="item range" id="item-2">`)
	assert.NotContains(t, out, `id="item-3"`)
	assert.Empty(t, h.Container().Children(), "control is destroyed when Run returns")
}

func TestHost_MissingDatasetIsNotRetried(t *testing.T) {
	src := &countingSource{Source: dataset.OpenCSV(filepath.Join(t.TempDir(), "nope.csv"), dataset.CSVOptions{})}
	h := New(Options{ReadAttempts: 5, ReadDelay: time.Millisecond}, src, newTimelineControl(false), &memSink{}, zerolog.Nop())

	err := h.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "load dataset")
	assert.Equal(t, 1, src.loads)
}

func TestHost_UnreadableDateDoesNotStopRendering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	writeCSV(t, path,
		"a1,Kickoff,01/06/2024 10:00 AM,",
		"a2,Broken,2024-06-01,",
		"a3,Review,4/6/2024 3:00 pm,",
	)

	sink := &memSink{}
	h := New(Options{}, dataset.OpenCSV(path, dataset.CSVOptions{}), newTimelineControl(false), sink, zerolog.Nop())
	require.NoError(t, h.Run(context.Background()))
	require.Equal(t, 1, sink.count())

	out := sink.latest()
	assert.Contains(t, out, "Kickoff")
	assert.Contains(t, out, "Review")
	assert.NotContains(t, out, "Broken")
}

func TestHost_EmptyDatasetWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	writeCSV(t, path)

	sink := &memSink{}
	h := New(Options{}, dataset.OpenCSV(path, dataset.CSVOptions{}), newTimelineControl(false), sink, zerolog.Nop())
	require.NoError(t, h.Run(context.Background()))
	assert.Equal(t, 0, sink.count())
}

func runInBackground(t *testing.T, h *Host) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	return func() {
		stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("host did not stop")
		}
	}
}

func TestHost_ItemListFollowsDataChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	writeCSV(t, path, "a1,Kickoff,01/06/2024 10:00 AM,")

	sink := &memSink{}
	ctrl := control.NewItemList(mapper.DefaultConfig(), zerolog.Nop())
	h := New(Options{RefreshSchedule: "@every 1h"}, dataset.OpenCSV(path, dataset.CSVOptions{}), ctrl, sink, zerolog.Nop())
	stop := runInBackground(t, h)
	defer stop()

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	writeCSV(t, path, "a1,Kickoff,01/06/2024 10:00 AM,", "a2,Review,04/06/2024 3:00 PM,")
	h.enqueue(dataChanged)

	require.Eventually(t, func() bool { return strings.Contains(sink.latest(), "Review") }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, sink.count())
}

func TestHost_TimelineKeepsFirstRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	writeCSV(t, path, "a1,Kickoff,01/06/2024 10:00 AM,")

	sink := &memSink{}
	h := New(Options{RefreshSchedule: "@every 1h"}, dataset.OpenCSV(path, dataset.CSVOptions{}), newTimelineControl(false), sink, zerolog.Nop())
	stop := runInBackground(t, h)

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	writeCSV(t, path, "a2,Review,04/06/2024 3:00 PM,")
	h.enqueue(scheduled)
	require.Eventually(t, func() bool { return h.Updates() == 3 }, 5*time.Second, 10*time.Millisecond,
		"the scheduled reload reaches the control")
	stop()

	assert.Equal(t, 1, sink.count(), "unchanged output is not rewritten")
	assert.NotContains(t, sink.latest(), "Review")
}

func TestHost_ConfigChangeResizesContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activities.csv")
	writeCSV(t, path, "a1,Kickoff,01/06/2024 10:00 AM,")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("layout:\n  width: 700\n"), 0o644))

	sink := &memSink{}
	h := New(Options{ConfigPath: cfgPath, RefreshSchedule: "@every 1h", Width: 700},
		dataset.OpenCSV(path, dataset.CSVOptions{}), newTimelineControl(false), sink, zerolog.Nop())
	stop := runInBackground(t, h)
	defer stop()

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, sink.latest(), `width="700"`)

	require.NoError(t, os.WriteFile(cfgPath, []byte("layout:\n  width: 500\n"), 0o644))
	h.enqueue(configChanged)

	require.Eventually(t, func() bool { return strings.Contains(sink.latest(), `width="500"`) }, 5*time.Second, 10*time.Millisecond)
}

func TestHost_WatchPicksUpFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.csv")
	writeCSV(t, path, "a1,Kickoff,01/06/2024 10:00 AM,")

	sink := &memSink{}
	ctrl := control.NewItemList(mapper.DefaultConfig(), zerolog.Nop())
	h := New(Options{Watch: true, Debounce: 20 * time.Millisecond, ReadAttempts: 3, ReadDelay: 10 * time.Millisecond},
		dataset.OpenCSV(path, dataset.CSVOptions{}), ctrl, sink, zerolog.Nop())
	stop := runInBackground(t, h)
	defer stop()

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Give the watcher goroutine time to register.
	time.Sleep(100 * time.Millisecond)
	writeCSV(t, path, "a1,Kickoff,01/06/2024 10:00 AM,", "a2,Watched,05/06/2024 9:00 AM,")

	require.Eventually(t, func() bool { return strings.Contains(sink.latest(), "Watched") }, 5*time.Second, 20*time.Millisecond)
}

func TestHost_Enqueue(t *testing.T) {
	h := New(Options{}, nil, nil, nil, zerolog.Nop())

	h.enqueue(dataChanged)
	h.enqueue(scheduled)
	require.Len(t, h.triggers, 1)

	h.enqueue(configChanged)
	require.Len(t, h.triggers, 1)
	assert.Equal(t, configChanged, <-h.triggers)
}

func TestHost_InvalidSchedule(t *testing.T) {
	h := New(Options{}, nil, nil, nil, zerolog.Nop())
	_, err := h.schedule("every tuesday")
	assert.ErrorContains(t, err, "invalid refresh schedule")
}

func TestWatcher_Match(t *testing.T) {
	wt := &watcher{targets: map[string]trigger{
		"crm.db":      dataChanged,
		"config.yaml": configChanged,
	}}

	got, ok := wt.match("/data/crm.db-wal")
	assert.True(t, ok)
	assert.Equal(t, dataChanged, got)

	got, ok = wt.match("/etc/config.yaml")
	assert.True(t, ok)
	assert.Equal(t, configChanged, got)

	_, ok = wt.match("/data/out.svg")
	assert.False(t, ok)
}

func TestFileSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	s := &FileSink{Path: path, Log: zerolog.Nop()}

	require.NoError(t, s.Write([]byte("<svg/>")))
	require.NoError(t, s.Write([]byte("<svg>2</svg>")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg>2</svg>", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
