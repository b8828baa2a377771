// Package plan loads the static day-by-day task plan.
//
// The plan file is a JSON object keyed by day number. Each day is either an
// ordered list of task descriptions or an object of block name to description:
//
//	{
//	  "1": ["Wake up 6:00", "Gym"],
//	  "2": {"morning": "Run 5 km", "evening": "Read 30 pages"}
//	}
//
// Block objects keep the order they have in the file.
package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

var (
	// ErrDayNotFound indicates the requested day is outside the plan.
	ErrDayNotFound = errors.NotFoundError("plan has no tasks for that day").Build()

	// ErrInvalidPlan indicates the plan file could not be parsed.
	ErrInvalidPlan = errors.PlanError("invalid plan file").Build()
)

// Task is one item of a day. Block is empty for list-style days.
type Task struct {
	Block string
	Text  string
}

// String renders "block: text" for block tasks and the bare text otherwise.
func (t Task) String() string {
	if t.Block == "" {
		return t.Text
	}
	return t.Block + ": " + t.Text
}

// Day is the content of one plan day.
type Day struct {
	Number int
	Tasks  []Task
}

// Lines returns the rendered task lines.
func (d Day) Lines() []string {
	lines := make([]string, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		lines = append(lines, t.String())
	}
	return lines
}

// Table is an immutable parsed plan.
type Table struct {
	days map[int]Day
	last int
}

// Lookup returns the plan for day.
func (t *Table) Lookup(day int) (Day, bool) {
	if t == nil {
		return Day{}, false
	}
	d, ok := t.days[day]
	return d, ok
}

// Get is Lookup returning ErrDayNotFound for missing days.
func (t *Table) Get(day int) (Day, error) {
	d, ok := t.Lookup(day)
	if !ok {
		return Day{}, ErrDayNotFound.WithContext("day", day)
	}
	return d, nil
}

// LastDay returns the highest configured day number, 0 for an empty plan.
func (t *Table) LastDay() int {
	if t == nil {
		return 0
	}
	return t.last
}

// Days returns the configured day numbers in ascending order.
func (t *Table) Days() []int {
	if t == nil {
		return nil
	}
	out := make([]int, 0, len(t.days))
	for n := range t.days {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Load reads and parses a plan file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrInvalidPlan.Wrap(err).WithContext("path", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, ErrInvalidPlan.Wrap(err).WithContext("path", path)
	}
	return t, nil
}

// Parse decodes plan JSON.
func Parse(data []byte) (*Table, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	t := &Table{days: make(map[int]Day, len(raw))}
	for key, value := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("day key %q is not a positive integer", key)
		}
		tasks, err := decodeTasks(value)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", n, err)
		}
		t.days[n] = Day{Number: n, Tasks: tasks}
		t.last = max(t.last, n)
	}
	return t, nil
}

func decodeTasks(value json.RawMessage) ([]Task, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return nil, fmt.Errorf("empty day")
	}

	switch value[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(value, &items); err != nil {
			return nil, fmt.Errorf("task list: %w", err)
		}
		tasks := make([]Task, 0, len(items))
		for _, item := range items {
			tasks = append(tasks, Task{Text: item})
		}
		return tasks, nil
	case '{':
		return decodeBlocks(value)
	default:
		return nil, fmt.Errorf("expected a list or an object of blocks")
	}
}

// decodeBlocks walks the object token by token to keep file order.
func decodeBlocks(value json.RawMessage) ([]Task, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}

	var tasks []Task
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		block, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected block key %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return nil, fmt.Errorf("block %q: %w", block, err)
		}
		tasks = append(tasks, Task{Block: block, Text: text})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	return tasks, nil
}
