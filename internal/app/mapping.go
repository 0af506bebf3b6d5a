package app

import (
	"github.com/example/watools/internal/core/registration"
	"github.com/example/watools/internal/ports/secondary"
)

// Record-to-core conversions. The core never sees API records directly.

func toCoreContacts(records []*secondary.ContactRecord) []registration.Contact {
	contacts := make([]registration.Contact, 0, len(records))
	for _, rec := range records {
		c := registration.Contact{
			ID:                rec.ID,
			MembershipLevelID: rec.MembershipLevelID,
			Status:            registration.ParseStatus(rec.Status),
		}
		for _, fv := range rec.FieldValues {
			c.Fields = append(c.Fields, registration.FieldValue{
				FieldName:  fv.FieldName,
				SystemCode: fv.SystemCode,
				RefIDs:     fv.RefIDs,
			})
		}
		contacts = append(contacts, c)
	}
	return contacts
}

func toCoreLevels(records []*secondary.MembershipLevelRecord) []registration.MembershipLevel {
	levels := make([]registration.MembershipLevel, 0, len(records))
	for _, rec := range records {
		levels = append(levels, registration.MembershipLevel{ID: rec.ID, Name: rec.Name})
	}
	return levels
}

func toCoreGroups(records []*secondary.MemberGroupRecord) []registration.MemberGroup {
	groups := make([]registration.MemberGroup, 0, len(records))
	for _, rec := range records {
		groups = append(groups, registration.MemberGroup{ID: rec.ID, Name: rec.Name})
	}
	return groups
}

func toCoreRegistrants(records []*secondary.RegistrantRecord) []registration.Registrant {
	registrants := make([]registration.Registrant, 0, len(records))
	for _, rec := range records {
		registrants = append(registrants, registration.Registrant{ContactID: rec.ContactID})
	}
	return registrants
}

func toCoreRegistrationTypes(records []secondary.RegistrationTypeRecord) []registration.RegistrationType {
	types := make([]registration.RegistrationType, 0, len(records))
	for _, rec := range records {
		types = append(types, registration.RegistrationType{ID: rec.ID, Name: rec.Name})
	}
	return types
}

// toCoreAccessRule returns nil when the event carries no access control section.
func toCoreAccessRule(rec *secondary.AccessControlRecord) *registration.AccessControlRule {
	if rec == nil {
		return nil
	}
	return &registration.AccessControlRule{
		AvailableForAnyLevel: rec.AvailableForAnyLevel,
		AllowedLevelIDs:      registration.NewIDSet(rec.AvailableForLevels...),
		AvailableForAnyGroup: rec.AvailableForAnyGroup,
		AllowedGroupIDs:      registration.NewIDSet(rec.AvailableForGroups...),
	}
}

func levelNames(records []*secondary.MembershipLevelRecord) map[int]string {
	names := make(map[int]string, len(records))
	for _, rec := range records {
		names[rec.ID] = rec.Name
	}
	return names
}

func groupNames(records []*secondary.MemberGroupRecord) map[int]string {
	names := make(map[int]string, len(records))
	for _, rec := range records {
		names[rec.ID] = rec.Name
	}
	return names
}
