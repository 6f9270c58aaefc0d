package pagination

import (
	"strconv"

	"github.com/Nwoyi/dr-jason-call-center-dashboard/internal/model"
)

// Entry is one pagination control: a page number, or Ellipsis for a
// collapsed gap.
type Entry int

// Ellipsis marks a gap between page numbers.
const Ellipsis Entry = -1

// MarshalJSON renders page numbers as JSON numbers and the gap marker as
// the string "ellipsis".
func (e Entry) MarshalJSON() ([]byte, error) {
	if e == Ellipsis {
		return []byte(`"ellipsis"`), nil
	}
	return []byte(strconv.Itoa(int(e))), nil
}

// Window computes the pagination controls for the current page.
//
// Up to 7 pages are listed in full. Longer ranges collapse around the
// current page: near the start the first five pages show, near the end the
// last five, and in the middle the current page with one neighbor on each
// side. The first and last page always stay visible.
func Window(current, total int) []Entry {
	if total <= 0 {
		return nil
	}
	if total <= 7 {
		entries := make([]Entry, 0, total)
		for p := 1; p <= total; p++ {
			entries = append(entries, Entry(p))
		}
		return entries
	}
	if current <= 4 {
		return []Entry{1, 2, 3, 4, 5, Ellipsis, Entry(total)}
	}
	if current >= total-3 {
		return []Entry{
			1, Ellipsis,
			Entry(total - 4), Entry(total - 3), Entry(total - 2), Entry(total - 1), Entry(total),
		}
	}
	return []Entry{
		1, Ellipsis,
		Entry(current - 1), Entry(current), Entry(current + 1),
		Ellipsis, Entry(total),
	}
}

// TotalPages returns how many table pages a result set of total rows fills.
func TotalPages(total int) int {
	return (total + model.PageSize - 1) / model.PageSize
}

// Clamp forces page into [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Meta is the pagination block attached to record listings.
type Meta struct {
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
	Window     []Entry `json:"window"`
}

// NewMeta builds the block for one page of a result set of total rows.
func NewMeta(page, total int) Meta {
	totalPages := TotalPages(total)
	return Meta{
		Page:       page,
		PageSize:   model.PageSize,
		Total:      total,
		TotalPages: totalPages,
		Window:     Window(page, totalPages),
	}
}
