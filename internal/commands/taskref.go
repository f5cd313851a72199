package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskflow/internal/engine"
	"taskflow/internal/model"
)

// IDPrefix introduces a reference by task identity.
const IDPrefix = "id:"

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the default view; 0 when ID is set
	ID  string // task identity
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrInvalidTaskRef indicates a reference that is neither a number nor id:<identity>.
	ErrInvalidTaskRef = errors.New("invalid task reference")

	// ErrOutOfRange indicates a number outside the default view.
	ErrOutOfRange = errors.New("task number out of range")
)

// ParseTaskRef parses the task reference in the first arg.
//
// Parsing rules:
// 1. If the arg is all digits → position in the default view
// 2. If the arg is id:<identity> → task identity
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	arg := strings.TrimSpace(args[0])

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidTaskRef, arg)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("%w: %d", ErrOutOfRange, num)
		}
		return TaskRef{Num: num}, nil
	}

	if id, ok := strings.CutPrefix(arg, IDPrefix); ok && id != "" {
		return TaskRef{ID: id}, nil
	}

	return TaskRef{}, fmt.Errorf("%w: %s", ErrInvalidTaskRef, arg)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// DefaultView returns the loaded tasks in reference order: every category,
// sorted by due date, no search.
func DefaultView(eng *engine.Engine) []model.Task {
	return engine.DeriveView(eng.Tasks(), model.DefaultFilter())
}

// ViewNumbers maps task identities to their reference numbers.
func ViewNumbers(eng *engine.Engine) map[string]int {
	view := DefaultView(eng)
	nums := make(map[string]int, len(view))
	for i, t := range view {
		nums[t.ID] = i + 1
	}
	return nums
}

// ResolveTaskRef finds the loaded task a reference names.
func ResolveTaskRef(eng *engine.Engine, ref TaskRef) (model.Task, error) {
	if ref.ID != "" {
		t, ok := eng.Find(ref.ID)
		if !ok {
			return model.Task{}, fmt.Errorf("%w: %s", engine.ErrNotFound, ref.ID)
		}
		return t, nil
	}
	view := DefaultView(eng)
	if ref.Num < 1 || ref.Num > len(view) {
		return model.Task{}, fmt.Errorf("%w: %d", ErrOutOfRange, ref.Num)
	}
	return view[ref.Num-1], nil
}
