// Package list provides a navigable list component for the TUI, used for
// suggestions, recent searches and results.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/styles"
)

// Renderer turns an item into a title line and an optional muted detail.
type Renderer[T any] func(item T) (title, detail string)

// List displays items with a selection cursor.
type List[T any] struct {
	items    []T
	selected int
	focused  bool
	styles   *styles.Styles
	render   Renderer[T]
	title    string
	empty    string
	width    int
	height   int
}

// New creates a list. title is rendered above the items with a count;
// empty is shown when there are no items and may be "".
func New[T any](s *styles.Styles, title, empty string, render Renderer[T]) *List[T] {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &List[T]{
		styles: s,
		render: render,
		title:  title,
		empty:  empty,
		width:  80,
		height: 10,
	}
}

// SetItems replaces the items, keeping the cursor in range.
func (l *List[T]) SetItems(items []T) {
	l.items = items
	l.selected = min(l.selected, max(len(items)-1, 0))
}

// ResetSelection moves the cursor to the first item.
func (l *List[T]) ResetSelection() {
	l.selected = 0
}

// Items returns the current items.
func (l *List[T]) Items() []T {
	return l.items
}

// Selected returns the cursor index.
func (l *List[T]) Selected() int {
	return l.selected
}

// SelectedItem returns the item under the cursor.
func (l *List[T]) SelectedItem() (T, bool) {
	var zero T
	if l.selected < 0 || l.selected >= len(l.items) {
		return zero, false
	}
	return l.items[l.selected], true
}

// MoveUp moves the cursor up and reports whether it moved.
func (l *List[T]) MoveUp() bool {
	if l.selected > 0 {
		l.selected--
		return true
	}
	return false
}

// MoveDown moves the cursor down and reports whether it moved.
func (l *List[T]) MoveDown() bool {
	if l.selected < len(l.items)-1 {
		l.selected++
		return true
	}
	return false
}

// SetFocused controls whether the cursor is highlighted.
func (l *List[T]) SetFocused(focused bool) {
	l.focused = focused
}

// Focused reports whether the list has focus.
func (l *List[T]) Focused() bool {
	return l.focused
}

// SetTitle replaces the header text.
func (l *List[T]) SetTitle(title string) {
	l.title = title
}

// SetDimensions sets the component dimensions.
func (l *List[T]) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *List[T]) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list has no items.
func (l *List[T]) IsEmpty() bool {
	return len(l.items) == 0
}

// View renders the visible window of items around the cursor.
func (l *List[T]) View() string {
	lines := make([]string, 0, len(l.items)+2)

	if l.title != "" {
		lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", l.title, len(l.items))))
	}
	if len(l.items) == 0 {
		if l.empty != "" {
			lines = append(lines, l.styles.Muted.Render(l.empty))
		}
		return strings.Join(lines, "\n")
	}

	// Each item takes up to two lines.
	visible := max((l.height-2)/2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.items))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i))
	}
	return strings.Join(lines, "\n")
}

func (l *List[T]) renderItem(i int) string {
	title, detail := l.render(l.items[i])
	if title == "" {
		title = "(untitled)"
	}
	title = Truncate(title, max(l.width-6, 10))

	var line string
	if l.focused && i == l.selected {
		line = l.styles.Selected.Render("> " + title)
	} else {
		line = l.styles.Normal.Render("  " + title)
	}

	if detail != "" {
		line += "\n" + l.styles.Muted.Render("    "+Truncate(detail, max(l.width-6, 10)))
	}
	return line
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
