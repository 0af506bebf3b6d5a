// Package registration contains the pure business logic for event auto-registration.
// Nothing in this package performs I/O: callers pre-fetch every snapshot
// (event, registrants, contacts, catalogs) and pass it in.
package registration

import (
	"fmt"
	"sort"
	"strings"
)

// Status is a contact's membership status as reported by the API.
type Status string

// Membership status values.
const (
	StatusActive         Status = "Active"
	StatusLapsed         Status = "Lapsed"
	StatusPendingNew     Status = "PendingNew"
	StatusPendingRenewal Status = "PendingRenewal"
	StatusUnknown        Status = "Unknown"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusActive,
	StatusLapsed,
	StatusPendingNew,
	StatusPendingRenewal,
	StatusUnknown,
}

// ParseStatus maps an API status string onto the enum.
// Empty or unrecognized values become StatusUnknown.
func ParseStatus(s string) Status {
	for _, st := range AllStatuses {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StatusUnknown
}

// ValidateStatuses converts operator-supplied status names into the enum.
// Matching is case-insensitive; names outside the enum are rejected.
func ValidateStatuses(names []string) ([]Status, error) {
	result := make([]Status, 0, len(names))
	seen := make(map[Status]bool)
	for _, name := range names {
		var match Status
		for _, st := range AllStatuses {
			if strings.EqualFold(strings.TrimSpace(name), string(st)) {
				match = st
				break
			}
		}
		if match == "" {
			return nil, fmt.Errorf("invalid status %q (valid: %s)", name, statusList())
		}
		if !seen[match] {
			seen[match] = true
			result = append(result, match)
		}
	}
	return result, nil
}

func statusList() string {
	names := make([]string, len(AllStatuses))
	for i, st := range AllStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// GroupsSystemCode is the system code of the contact field holding member groups.
const GroupsSystemCode = "Groups"

// FieldValue is one entry of a contact's custom-field collection.
// RefIDs holds the IDs of referenced objects when the value is a list of references.
type FieldValue struct {
	FieldName  string
	SystemCode string
	RefIDs     []int
}

// Contact is a point-in-time snapshot of an account contact.
type Contact struct {
	ID                int
	MembershipLevelID *int // nil when the contact holds no membership
	Status            Status
	Fields            []FieldValue
}

// GroupIDs returns the member group IDs of the contact.
// ok is false when the contact has no Groups field at all.
func (c Contact) GroupIDs() (ids []int, ok bool) {
	for _, f := range c.Fields {
		if f.SystemCode == GroupsSystemCode {
			return f.RefIDs, true
		}
	}
	return nil, false
}

// MembershipLevel is an account-wide membership level.
type MembershipLevel struct {
	ID   int
	Name string
}

// MemberGroup is an account-wide member group.
type MemberGroup struct {
	ID   int
	Name string
}

// AccessControlRule is an event's eligible-audience policy.
// When AvailableForAnyLevel is set AllowedLevelIDs is ignored (same for groups).
type AccessControlRule struct {
	AvailableForAnyLevel bool
	AllowedLevelIDs      IDSet
	AvailableForAnyGroup bool
	AllowedGroupIDs      IDSet
}

// RegistrationType is one ticket type defined on an event.
type RegistrationType struct {
	ID   int
	Name string
}

// Event is an event snapshot including its access control and registration types.
type Event struct {
	ID                int
	Name              string
	AccessControl     *AccessControlRule // nil when the event has no access control section
	RegistrationTypes []RegistrationType
}

// Registrant is an existing registration for an event.
type Registrant struct {
	ContactID int
}

// StatusBuckets maps a status to the contact IDs awaiting registration.
type StatusBuckets map[Status][]int

// Statuses returns the non-empty bucket keys in display order.
func (b StatusBuckets) Statuses() []Status {
	var result []Status
	for _, st := range AllStatuses {
		if len(b[st]) > 0 {
			result = append(result, st)
		}
	}
	return result
}

// Total returns the number of contact IDs across all buckets.
func (b StatusBuckets) Total() int {
	n := 0
	for _, ids := range b {
		n += len(ids)
	}
	return n
}

// IDSet is a set of integer IDs.
type IDSet map[int]struct{}

// NewIDSet builds a set from the given IDs.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an ID.
func (s IDSet) Add(id int) { s[id] = struct{}{} }

// Contains reports whether id is in the set.
func (s IDSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// ContainsAny reports whether any of ids is in the set.
func (s IDSet) ContainsAny(ids []int) bool {
	for _, id := range ids {
		if s.Contains(id) {
			return true
		}
	}
	return false
}

// Minus returns the IDs of s not present in other.
func (s IDSet) Minus(other IDSet) IDSet {
	result := make(IDSet, len(s))
	for id := range s {
		if !other.Contains(id) {
			result.Add(id)
		}
	}
	return result
}

// Clone returns a copy of the set.
func (s IDSet) Clone() IDSet {
	result := make(IDSet, len(s))
	for id := range s {
		result.Add(id)
	}
	return result
}

// Equal reports whether both sets hold the same IDs.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Sorted returns the IDs in ascending order.
func (s IDSet) Sorted() []int {
	result := make([]int, 0, len(s))
	for id := range s {
		result = append(result, id)
	}
	sort.Ints(result)
	return result
}
