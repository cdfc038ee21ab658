package listing

import "fmt"

// Paginator is the Previous/Next control of a list. It never reports a page outside [1, Total].
type Paginator struct {
	Current int
	Total   int
}

func NewPaginator(current, total int) Paginator {
	if total < 1 {
		total = 1
	}
	return Paginator{Current: clamp(current, 1, total), Total: total}
}

func (p Paginator) PrevDisabled() bool { return p.Current <= 1 }
func (p Paginator) NextDisabled() bool { return p.Current >= p.Total }

func (p Paginator) PrevPage() int { return clamp(p.Current-1, 1, p.Total) }
func (p Paginator) NextPage() int { return clamp(p.Current+1, 1, p.Total) }

// Label is the page indicator.
func (p Paginator) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Current, p.Total)
}

// Prev calls onPageChange with the previous page, unless Previous is disabled.
func (p Paginator) Prev(onPageChange func(page int)) {
	if !p.PrevDisabled() {
		onPageChange(p.PrevPage())
	}
}

// Next calls onPageChange with the next page, unless Next is disabled.
func (p Paginator) Next(onPageChange func(page int)) {
	if !p.NextDisabled() {
		onPageChange(p.NextPage())
	}
}

// GoTo calls onPageChange with page clamped to [1, Total].
func (p Paginator) GoTo(page int, onPageChange func(page int)) {
	onPageChange(clamp(page, 1, p.Total))
}

// Hrefs returns the Previous/Next links built by url; a disabled control gets "".
func (p Paginator) Hrefs(url func(page int) string) (prev, next string) {
	if !p.PrevDisabled() {
		prev = url(p.PrevPage())
	}
	if !p.NextDisabled() {
		next = url(p.NextPage())
	}
	return prev, next
}
