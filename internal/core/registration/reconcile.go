package registration

import (
	"fmt"
	"strings"
)

// AutoRegisterMarker identifies the registration type reserved for bulk enrollment.
const AutoRegisterMarker = "auto-register"

// ReconcileInput contains the pre-fetched data needed to build a plan.
type ReconcileInput struct {
	Eligible          IDSet
	Registrants       []Registrant
	Contacts          []Contact
	StatusFilter      []Status
	RegistrationTypes []RegistrationType
}

// Plan describes who gets registered and with which registration type.
type Plan struct {
	// Buckets holds every pending contact grouped by status, including
	// statuses outside the filter, so operators can see the full breakdown.
	Buckets StatusBuckets
	// ToProcess is Buckets restricted to the status filter.
	ToProcess        StatusBuckets
	RegistrationType RegistrationType

	EligibleCount          int
	AlreadyRegisteredCount int
	PendingCount           int
}

// Statuses returns the statuses to process, in display order.
func (p *Plan) Statuses() []Status {
	return p.ToProcess.Statuses()
}

// Reconcile diffs the eligible pool against current registrants, buckets the
// remainder by membership status and selects the auto-register type.
// Pure: identical input always yields an identical plan.
func Reconcile(in ReconcileInput) (*Plan, error) {
	regType, err := SelectAutoRegisterType(in.RegistrationTypes)
	if err != nil {
		return nil, err
	}

	registered := make(IDSet, len(in.Registrants))
	for _, r := range in.Registrants {
		registered.Add(r.ContactID)
	}
	pending := in.Eligible.Minus(registered)

	buckets := BucketByStatus(pending, in.Contacts)

	filter := make(map[Status]bool, len(in.StatusFilter))
	for _, st := range in.StatusFilter {
		filter[st] = true
	}
	toProcess := make(StatusBuckets)
	for st, ids := range buckets {
		if filter[st] {
			toProcess[st] = ids
		}
	}

	return &Plan{
		Buckets:                buckets,
		ToProcess:              toProcess,
		RegistrationType:       regType,
		EligibleCount:          len(in.Eligible),
		AlreadyRegisteredCount: len(in.Eligible) - len(pending),
		PendingCount:           len(pending),
	}, nil
}

// BucketByStatus groups the pending IDs by contact status, preserving the
// order of the contact list. Each contact ID is bucketed at most once.
func BucketByStatus(pending IDSet, contacts []Contact) StatusBuckets {
	buckets := make(StatusBuckets)
	seen := make(IDSet, len(pending))
	for _, c := range contacts {
		if !pending.Contains(c.ID) || seen.Contains(c.ID) {
			continue
		}
		seen.Add(c.ID)
		st := ParseStatus(string(c.Status))
		buckets[st] = append(buckets[st], c.ID)
	}
	return buckets
}

// SelectAutoRegisterType returns the single registration type whose name
// contains the auto-register marker (case-insensitive).
// Rules:
// - zero matches: event is not configured for auto-registration
// - more than one match: ambiguous
func SelectAutoRegisterType(types []RegistrationType) (RegistrationType, error) {
	var matches []RegistrationType
	for _, t := range types {
		if strings.Contains(strings.ToLower(t.Name), AutoRegisterMarker) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return RegistrationType{}, &ConfigurationError{Reason: "event is not configured for auto-registration"}
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = fmt.Sprintf("%q", m.Name)
		}
		return RegistrationType{}, &ConfigurationError{
			Reason: fmt.Sprintf("ambiguous auto-register type — event must define exactly one (found %s)", strings.Join(names, ", ")),
		}
	}
}
