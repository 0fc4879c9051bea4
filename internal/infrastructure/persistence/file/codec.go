package file

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/tasktrack/internal/application/dto"
	"github.com/YoshitsuguKoike/tasktrack/internal/application/port/output"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/epic"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/subtask"
	"github.com/YoshitsuguKoike/tasktrack/internal/domain/model/task"
	"github.com/YoshitsuguKoike/tasktrack/internal/pkg/textnorm"
)

// Header is the first line of every snapshot file
var Header = []string{"id", "type", "name", "status", "description", "duration", "startTime", "epic"}

const (
	colID = iota
	colType
	colTitle
	colStatus
	colDescription
	colDuration
	colStart
	colEpic
)

// minFields is the shortest accepted record; the epic column may be omitted
// for tasks and epics
const minFields = colEpic

// Encode writes snap as CSV records (tasks, epics, subtasks), a blank line,
// and the comma-joined history.
func Encode(w io.Writer, snap dto.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, it := range snap.Items() {
		rec, err := encodeRecord(it)
		if err != nil {
			return &output.PersistenceError{Op: "save", Record: fmt.Sprintf("id=%d", it.ID()), Err: err}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", it.ID(), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	history := make([]string, 0, len(snap.History))
	for _, id := range snap.History {
		history = append(history, id.String())
	}
	_, err := fmt.Fprintf(w, "\n%s\n", strings.Join(history, ","))
	return err
}

func encodeRecord(it task.Item) ([]string, error) {
	rec := make([]string, len(Header))
	rec[colID] = it.ID().String()
	rec[colType] = it.Kind().String()
	rec[colTitle] = textnorm.SingleLine(it.Title())
	rec[colStatus] = it.Status().String()
	rec[colDescription] = textnorm.SingleLine(it.Description())
	if d, ok := it.Duration(); ok {
		minutes, err := dto.Minutes(d)
		if err != nil {
			return nil, err
		}
		rec[colDuration] = strconv.FormatInt(minutes, 10)
	}
	if s, ok := it.StartTime(); ok {
		rec[colStart] = s.Format(time.RFC3339)
	}
	if st, ok := it.(subtask.Subtask); ok {
		rec[colEpic] = st.EpicID().String()
	}
	return rec, nil
}

// Decode parses a snapshot written by Encode. Any short or malformed record
// fails the whole decode with a *output.PersistenceError naming the record.
func Decode(r io.Reader) (dto.Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Err: err}
	}
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	records, history := splitSections(string(raw))

	var snap dto.Snapshot
	lines := strings.Split(records, "\n")
	for i, line := range lines {
		if i == 0 && isHeader(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := decodeLine(line, &snap); err != nil {
			return dto.Snapshot{}, &output.PersistenceError{
				Op:     "load",
				Record: line,
				Err:    fmt.Errorf("line %d: %w", i+1, err),
			}
		}
	}

	ids, err := decodeHistory(history)
	if err != nil {
		return dto.Snapshot{}, &output.PersistenceError{Op: "load", Record: history, Err: err}
	}
	snap.History = ids
	return snap, nil
}

// splitSections cuts the content at the first blank line
func splitSections(content string) (records, history string) {
	if strings.HasPrefix(content, "\n") {
		return "", strings.TrimSpace(content)
	}
	idx := strings.Index(content, "\n\n")
	if idx < 0 {
		return content, ""
	}
	return content[:idx], strings.TrimSpace(content[idx+2:])
}

func isHeader(line string) bool {
	return strings.HasPrefix(line, Header[colID]+","+Header[colType]+",")
}

func decodeLine(line string, snap *dto.Snapshot) error {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return err
	}
	if len(fields) < minFields {
		return fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields))
	}

	id, err := model.ParseTaskID(fields[colID])
	if err != nil {
		return err
	}
	kind, err := model.ParseTaskType(fields[colType])
	if err != nil {
		return err
	}
	status, err := model.ParseStatus(fields[colStatus])
	if err != nil {
		return err
	}
	dur, err := parseMinutes(fields[colDuration])
	if err != nil {
		return err
	}
	start, err := parseStart(fields[colStart])
	if err != nil {
		return err
	}
	title, description := fields[colTitle], fields[colDescription]

	switch kind {
	case model.TaskTypeTask:
		snap.Tasks = append(snap.Tasks, task.Reconstruct(id, title, description, status, start, dur))
	case model.TaskTypeEpic:
		snap.Epics = append(snap.Epics, epic.Reconstruct(id, title, description, status, start, dur, nil, nil))
	case model.TaskTypeSubtask:
		if len(fields) <= colEpic || strings.TrimSpace(fields[colEpic]) == "" {
			return errors.New("subtask without epic")
		}
		epicID, err := model.ParseTaskID(fields[colEpic])
		if err != nil {
			return fmt.Errorf("epic: %w", err)
		}
		snap.Subtasks = append(snap.Subtasks, subtask.Reconstruct(id, epicID, title, description, status, start, dur))
	}
	return nil
}

func parseMinutes(s string) (*time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid duration %q: negative", s)
	}
	d := time.Duration(n) * time.Minute
	return &d, nil
}

func parseStart(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}
	t, err := dto.ParseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeHistory(line string) ([]model.TaskID, error) {
	if line == "" {
		return nil, nil
	}
	parts := strings.Split(line, ",")
	ids := make([]model.TaskID, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		id, err := model.ParseTaskID(p)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
