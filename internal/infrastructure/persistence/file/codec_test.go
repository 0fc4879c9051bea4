package file

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	usecase "github.com/YoshitsuguKoike/tasktrack/internal/application/usecase/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/infrastructure/memory"
)

var start = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func ptrDur(min int) *time.Duration {
	d := time.Duration(min) * time.Minute
	return &d
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func sampleSnapshot() dto.Snapshot {
	return dto.Snapshot{
		Tasks: []task.Task{
			task.Reconstruct(1, "Buy milk, eggs", "from the \"good\" shop", model.StatusNew, ptrTime(start), ptrDur(30)),
			task.Reconstruct(2, "Unscheduled", "", model.StatusDone, nil, nil),
		},
		Epics: []epic.Epic{
			epic.Reconstruct(3, "Move", "new flat", model.StatusInProgress, ptrTime(start.Add(time.Hour)), ptrDur(75), nil, []model.TaskID{4, 5}),
		},
		Subtasks: []subtask.Subtask{
			subtask.Reconstruct(4, 3, "Pack", "", model.StatusDone, ptrTime(start.Add(time.Hour)), ptrDur(45)),
			subtask.Reconstruct(5, 3, "Drive", "", model.StatusNew, nil, ptrDur(30)),
		},
		History: []model.TaskID{4, 1, 3},
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleSnapshot()))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "id,type,name,status,description,duration,startTime,epic", lines[0])
	assert.Equal(t, `1,TASK,"Buy milk, eggs",NEW,"from the ""good"" shop",30,2025-01-15T09:00:00Z,`, lines[1])
	assert.Equal(t, "2,TASK,Unscheduled,DONE,,,,", lines[2])
	assert.Equal(t, "3,EPIC,Move,IN_PROGRESS,new flat,75,2025-01-15T10:00:00Z,", lines[3])
	assert.Equal(t, "4,SUBTASK,Pack,DONE,,45,2025-01-15T10:00:00Z,3", lines[4])
	assert.Equal(t, "5,SUBTASK,Drive,NEW,,30,,3", lines[5])
	assert.Equal(t, "", lines[6])
	assert.Equal(t, "4,1,3", lines[7])
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	original := sampleSnapshot()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	decoded, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, original.Tasks, decoded.Tasks)
	assert.Equal(t, original.Subtasks, decoded.Subtasks)
	assert.Equal(t, original.History, decoded.History)

	require.Len(t, decoded.Epics, 1)
	assert.Equal(t, "Move", decoded.Epics[0].Title())
	assert.Equal(t, model.StatusInProgress, decoded.Epics[0].Status())
}

func TestEncodeDecode_KeepsEpicSubtaskOrder(t *testing.T) {
	newManager := func() *usecase.Manager {
		return usecase.NewManager(memory.NewEntityStore(), memory.NewPriorityIndex(), memory.NewHistoryTracker(memory.DefaultHistoryCapacity))
	}

	m := newManager()
	e, err := m.CreateEpic(epic.New("Migrate", ""))
	require.NoError(t, err)
	for _, id := range []model.TaskID{50, 20, 35} {
		_, ok, err := m.CreateSubtask(subtask.Reconstruct(id, e.ID(), fmt.Sprintf("step %d", id), "", model.StatusNew, nil, nil))
		require.NoError(t, err)
		require.True(t, ok)
	}
	before, _ := m.GetEpic(e.ID())
	require.Equal(t, []model.TaskID{50, 20, 35}, before.SubtaskIDs())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m.Export()))
	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[2], "50,SUBTASK,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "20,SUBTASK,"), lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "35,SUBTASK,"), lines[4])

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	restored := newManager()
	require.NoError(t, restored.Import(decoded))

	after, ok := restored.GetEpic(e.ID())
	require.True(t, ok)
	assert.Equal(t, []model.TaskID{50, 20, 35}, after.SubtaskIDs())
}

func TestEncode_FoldsNewlines(t *testing.T) {
	snap := dto.Snapshot{
		Tasks: []task.Task{task.Reconstruct(1, "two\nlines", "a\r\nb", model.StatusNew, nil, nil)},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded.Tasks, 1)
	assert.Equal(t, "two lines", decoded.Tasks[0].Title())
	assert.Equal(t, "a b", decoded.Tasks[0].Description())
}

func TestDecode_EmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty file", ""},
		{"Header only", "id,type,name,status,description,duration,startTime,epic\n"},
		{"Header and empty history", "id,type,name,status,description,duration,startTime,epic\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, 0, snap.Len())
			assert.Empty(t, snap.History)
		})
	}
}

func TestDecode_AcceptsLegacyFormats(t *testing.T) {
	input := "id,type,name,status,description,duration,startTime,epic\r\n" +
		"1,TASK,Legacy,NEW,desc,15,2025-01-15T09:00,\r\n" +
		"2,EPIC,Epic,NEW,desc,null,null\r\n" +
		"\r\n" +
		"1\r\n"

	snap, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	require.Len(t, snap.Epics, 1)

	s, ok := snap.Tasks[0].StartTime()
	require.True(t, ok)
	assert.True(t, s.Equal(start))
	_, ok = snap.Epics[0].Duration()
	assert.False(t, ok)
	assert.Equal(t, []model.TaskID{1}, snap.History)
}

func TestDecode_CorruptRecords(t *testing.T) {
	header := "id,type,name,status,description,duration,startTime,epic\n"

	tests := []struct {
		name   string
		record string
	}{
		{"Short record", "1,TASK,Title"},
		{"Bad id", "x,TASK,Title,NEW,,,,"},
		{"Bad type", "1,STORY,Title,NEW,,,,"},
		{"Bad status", "1,TASK,Title,WAITING,,,,"},
		{"Bad duration", "1,TASK,Title,NEW,,ten,,"},
		{"Negative duration", "1,TASK,Title,NEW,,-5,,"},
		{"Bad start", "1,TASK,Title,NEW,,10,yesterday,"},
		{"Subtask without epic", "1,SUBTASK,Title,NEW,,,,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(header + tt.record + "\n\n"))
			require.Error(t, err)

			var pe *output.PersistenceError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "load", pe.Op)
			assert.Equal(t, tt.record, pe.Record)
			assert.Contains(t, pe.Error(), "line 2")
		})
	}
}

func TestDecode_CorruptHistory(t *testing.T) {
	input := "id,type,name,status,description,duration,startTime,epic\n1,TASK,T,NEW,,,,\n\n1,abc\n"

	_, err := Decode(strings.NewReader(input))
	var pe *output.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "1,abc", pe.Record)
}
