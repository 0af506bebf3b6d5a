// Package contactstats builds membership breakdowns (by level and by group)
// from contact snapshots. Pure functions, no I/O.
package contactstats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/example/watools/internal/core/registration"
)

// NonMemberName labels contacts that hold no membership level.
const NonMemberName = "Non-Member"

// Row is one level or group with its per-status contact counts.
type Row struct {
	ID     *int // nil for the non-member row
	Name   string
	Counts map[registration.Status]int
	Total  int
}

// Summary is a table of rows plus per-status totals.
type Summary struct {
	Rows       []Row
	Statuses   []registration.Status // statuses present in the data, display order
	Totals     map[registration.Status]int
	GrandTotal int
}

// ByLevel counts contacts per membership level and status.
// levelNames maps level IDs to names; unknown IDs are labelled "Level <id>".
func ByLevel(contacts []registration.Contact, levelNames map[int]string) Summary {
	b := newBuilder()
	for _, c := range contacts {
		st := registration.ParseStatus(string(c.Status))
		if c.MembershipLevelID == nil {
			b.add(nil, NonMemberName, st)
			continue
		}
		id := *c.MembershipLevelID
		b.add(&id, nameOr(levelNames, id, "Level"), st)
	}
	return b.build()
}

// ByGroup counts group participations per member group and status.
// A contact in several groups is counted once per group.
func ByGroup(contacts []registration.Contact, groupNames map[int]string) Summary {
	b := newBuilder()
	for _, c := range contacts {
		st := registration.ParseStatus(string(c.Status))
		ids, ok := c.GroupIDs()
		if !ok {
			continue
		}
		for _, id := range ids {
			id := id
			b.add(&id, nameOr(groupNames, id, "Group"), st)
		}
	}
	return b.build()
}

func nameOr(names map[int]string, id int, kind string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return kind + " " + strconv.Itoa(id)
}

type builder struct {
	rows    map[string]*Row
	present map[registration.Status]bool
}

func newBuilder() *builder {
	return &builder{
		rows:    make(map[string]*Row),
		present: make(map[registration.Status]bool),
	}
}

func (b *builder) add(id *int, name string, st registration.Status) {
	key := "none"
	if id != nil {
		key = strconv.Itoa(*id)
	}
	row, ok := b.rows[key]
	if !ok {
		row = &Row{ID: id, Name: name, Counts: make(map[registration.Status]int)}
		b.rows[key] = row
	}
	row.Counts[st]++
	row.Total++
	b.present[st] = true
}

func (b *builder) build() Summary {
	s := Summary{Totals: make(map[registration.Status]int)}
	for _, st := range registration.AllStatuses {
		if b.present[st] {
			s.Statuses = append(s.Statuses, st)
		}
	}
	for _, row := range b.rows {
		s.Rows = append(s.Rows, *row)
		for st, n := range row.Counts {
			s.Totals[st] += n
		}
		s.GrandTotal += row.Total
	}
	sort.SliceStable(s.Rows, func(i, j int) bool {
		li, lj := sortsLast(s.Rows[i].Name), sortsLast(s.Rows[j].Name)
		if li != lj {
			return !li
		}
		ni, nj := strings.ToLower(s.Rows[i].Name), strings.ToLower(s.Rows[j].Name)
		if ni != nj {
			return ni < nj
		}
		return rowID(s.Rows[i]) < rowID(s.Rows[j])
	})
	return s
}

// sortsLast keeps the catch-all rows at the bottom of the table.
func sortsLast(name string) bool {
	return name == NonMemberName || name == "Friend"
}

func rowID(r Row) int {
	if r.ID == nil {
		return -1
	}
	return *r.ID
}
