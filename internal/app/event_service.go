package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/watools/internal/core/eventfilter"
	"github.com/example/watools/internal/core/registration"
	"github.com/example/watools/internal/logging"
	"github.com/example/watools/internal/ports/primary"
	"github.com/example/watools/internal/ports/secondary"
)

// EventServiceImpl implements the EventService interface.
type EventServiceImpl struct {
	client secondary.WildApricotClient
	log    *logging.Logger
	now    func() time.Time
}

// NewEventService creates a new EventService with injected dependencies.
func NewEventService(client secondary.WildApricotClient, log *logging.Logger) *EventServiceImpl {
	return &EventServiceImpl{client: client, log: log, now: time.Now}
}

// ListEvents lists events matching the date window and query, oldest first.
func (s *EventServiceImpl) ListEvents(ctx context.Context, req primary.ListEventsRequest) ([]*primary.Event, error) {
	filter := eventfilter.Filter{
		ShowAll: req.ShowAll,
		Future:  req.Future,
		Year:    req.Year,
		Month:   req.Month,
		After:   req.After,
		Before:  req.Before,
	}
	if req.Query != "" {
		expr, err := eventfilter.Parse(req.Query)
		if err != nil {
			return nil, fmt.Errorf("invalid query: %w", err)
		}
		filter.Query = expr
	}

	records, err := s.client.FetchEvents(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	type dated struct {
		start time.Time
		event *primary.Event
	}
	var matched []dated
	now := s.now()
	for _, rec := range records {
		start, err := parseEventTime(rec.StartDate)
		if err != nil {
			s.log.Debugf("event %d has unparseable start date %q", rec.ID, rec.StartDate)
		}
		ok, err := filter.Match(start, rec.Fields, now)
		if err != nil {
			return nil, fmt.Errorf("query failed on event %d: %w", rec.ID, err)
		}
		if ok {
			matched = append(matched, dated{start: start, event: recordToEvent(rec)})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].start.Before(matched[j].start)
	})

	events := make([]*primary.Event, len(matched))
	for i, m := range matched {
		events[i] = m.event
	}
	s.log.Debugf("%d of %d events match", len(events), len(records))
	return events, nil
}

// GetEvent retrieves one event, naming its allowed levels and groups.
func (s *EventServiceImpl) GetEvent(ctx context.Context, accountID, eventID int) (*primary.EventDetail, error) {
	rec, err := s.client.FetchEvent(ctx, accountID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	detail := &primary.EventDetail{Event: *recordToEvent(rec)}
	for _, rt := range rec.RegistrationTypes {
		detail.RegistrationTypes = append(detail.RegistrationTypes, primary.NamedID{ID: rt.ID, Name: rt.Name})
	}
	if rt, err := registration.SelectAutoRegisterType(toCoreRegistrationTypes(rec.RegistrationTypes)); err == nil {
		detail.AutoRegisterTypeName = rt.Name
	}

	ac := rec.AccessControl
	if ac == nil {
		return detail, nil
	}
	detail.AccessLevel = ac.AccessLevel
	detail.AvailableForAnyLevel = ac.AvailableForAnyLevel
	detail.AvailableForAnyGroup = ac.AvailableForAnyGroup

	if !ac.AvailableForAnyLevel && len(ac.AvailableForLevels) > 0 {
		levels, err := s.client.FetchMembershipLevels(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch membership levels: %w", err)
		}
		detail.Levels = named(ac.AvailableForLevels, levelNames(levels))
	}
	if !ac.AvailableForAnyGroup && len(ac.AvailableForGroups) > 0 {
		groups, err := s.client.FetchMemberGroups(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch member groups: %w", err)
		}
		detail.Groups = named(ac.AvailableForGroups, groupNames(groups))
	}

	return detail, nil
}

func named(ids []int, names map[int]string) []primary.NamedID {
	result := make([]primary.NamedID, len(ids))
	for i, id := range ids {
		result[i] = primary.NamedID{ID: id, Name: names[id]}
	}
	return result
}

func recordToEvent(rec *secondary.EventRecord) *primary.Event {
	start, _ := parseEventTime(rec.StartDate)
	return &primary.Event{
		ID:                          rec.ID,
		Name:                        rec.Name,
		StartDate:                   rec.StartDate,
		Start:                       start,
		Location:                    rec.Location,
		ConfirmedRegistrationsCount: rec.ConfirmedRegistrationsCount,
		RegistrationsLimit:          rec.RegistrationsLimit,
		Raw:                         rec.Fields,
	}
}

// parseEventTime accepts RFC 3339 and the offset-less form the API sometimes returns.
func parseEventTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Ensure EventServiceImpl implements the interface
var _ primary.EventService = (*EventServiceImpl)(nil)
