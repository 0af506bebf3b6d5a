package wildapricot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/example/watools/internal/ports/secondary"
)

// Wire shapes of the API's JSON. Only the fields the tool reads are declared.

type apiRef struct {
	ID   int    `json:"Id"`
	Name string `json:"Name"`
}

type apiAccount struct {
	ID                int    `json:"Id"`
	Name              string `json:"Name"`
	PrimaryDomainName string `json:"PrimaryDomainName"`
	ContactLimitInfo  *struct {
		CurrentContactsCount     int `json:"CurrentContactsCount"`
		BillingPlanContactsLimit int `json:"BillingPlanContactsLimit"`
	} `json:"ContactLimitInfo"`
}

type apiAccessControl struct {
	AccessLevel          string   `json:"AccessLevel"`
	AvailableForAnyLevel bool     `json:"AvailableForAnyLevel"`
	AvailableForLevels   []apiRef `json:"AvailableForLevels"`
	AvailableForAnyGroup bool     `json:"AvailableForAnyGroup"`
	AvailableForGroups   []apiRef `json:"AvailableForGroups"`
}

type apiRegistrationType struct {
	ID          int    `json:"Id"`
	Name        string `json:"Name"`
	IsEnabled   bool   `json:"IsEnabled"`
	Description string `json:"Description"`
}

type apiEvent struct {
	ID                          int    `json:"Id"`
	Name                        string `json:"Name"`
	StartDate                   string `json:"StartDate"`
	EndDate                     string `json:"EndDate"`
	Location                    string `json:"Location"`
	RegistrationEnabled         bool   `json:"RegistrationEnabled"`
	ConfirmedRegistrationsCount int    `json:"ConfirmedRegistrationsCount"`
	RegistrationsLimit          *int   `json:"RegistrationsLimit"`
	Details                     *struct {
		AccessControl     *apiAccessControl     `json:"AccessControl"`
		RegistrationTypes []apiRegistrationType `json:"RegistrationTypes"`
	} `json:"Details"`
}

type apiRegistrant struct {
	ID                 int    `json:"Id"`
	Contact            apiRef `json:"Contact"`
	DisplayName        string `json:"DisplayName"`
	RegistrationTypeID int    `json:"RegistrationTypeId"`
	Status             string `json:"Status"`
}

type apiFieldValue struct {
	FieldName  string          `json:"FieldName"`
	SystemCode string          `json:"SystemCode"`
	Value      json.RawMessage `json:"Value"`
}

type apiContact struct {
	ID              int             `json:"Id"`
	DisplayName     string          `json:"DisplayName"`
	Email           string          `json:"Email"`
	Status          string          `json:"Status"`
	MembershipLevel *apiRef         `json:"MembershipLevel"`
	FieldValues     []apiFieldValue `json:"FieldValues"`
}

// apiContactsResponse is either a finished contact list or an asynchronous
// query handle to poll.
type apiContactsResponse struct {
	ResultID  string       `json:"ResultId"`
	ResultURL string       `json:"ResultUrl"`
	State     string       `json:"State"`
	Contacts  []apiContact `json:"Contacts"`
}

type apiMemberGroup struct {
	ID            int    `json:"Id"`
	Name          string `json:"Name"`
	Description   string `json:"Description"`
	ContactsCount int    `json:"ContactsCount"`
}

type apiRegistrationPayload struct {
	Contact            apiIDRef `json:"Contact"`
	Event              apiIDRef `json:"Event"`
	RegistrationTypeID int      `json:"RegistrationTypeId"`
	IsCheckedIn        bool     `json:"IsCheckedIn"`
	Status             string   `json:"Status"`
}

type apiIDRef struct {
	ID int `json:"Id"`
}

// decodeList accepts either a bare JSON array or an object wrapping the array under key.
func decodeList(body []byte, key string, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	raw, ok := wrapper[key]
	if !ok {
		return fmt.Errorf("response has no %q list", key)
	}
	return json.Unmarshal(raw, out)
}

func toAccountRecord(a apiAccount) *secondary.AccountRecord {
	rec := &secondary.AccountRecord{
		ID:                a.ID,
		Name:              a.Name,
		PrimaryDomainName: a.PrimaryDomainName,
	}
	if a.ContactLimitInfo != nil {
		rec.ContactCount = a.ContactLimitInfo.CurrentContactsCount
		rec.ContactLimit = a.ContactLimitInfo.BillingPlanContactsLimit
	}
	return rec
}

func refIDs(refs []apiRef) []int {
	ids := make([]int, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

// toEventRecord maps a raw event object, keeping the raw fields for queries.
func toEventRecord(raw json.RawMessage) (*secondary.EventRecord, error) {
	var e apiEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	rec := &secondary.EventRecord{
		ID:                          e.ID,
		Name:                        e.Name,
		StartDate:                   e.StartDate,
		EndDate:                     e.EndDate,
		Location:                    e.Location,
		RegistrationEnabled:         e.RegistrationEnabled,
		ConfirmedRegistrationsCount: e.ConfirmedRegistrationsCount,
		Fields:                      fields,
	}
	if e.RegistrationsLimit != nil {
		rec.RegistrationsLimit = *e.RegistrationsLimit
	}
	if e.Details != nil {
		if ac := e.Details.AccessControl; ac != nil {
			rec.AccessControl = &secondary.AccessControlRecord{
				AccessLevel:          ac.AccessLevel,
				AvailableForAnyLevel: ac.AvailableForAnyLevel,
				AvailableForLevels:   refIDs(ac.AvailableForLevels),
				AvailableForAnyGroup: ac.AvailableForAnyGroup,
				AvailableForGroups:   refIDs(ac.AvailableForGroups),
			}
		}
		for _, rt := range e.Details.RegistrationTypes {
			rec.RegistrationTypes = append(rec.RegistrationTypes, secondary.RegistrationTypeRecord{
				ID:          rt.ID,
				Name:        rt.Name,
				IsEnabled:   rt.IsEnabled,
				Description: rt.Description,
			})
		}
	}
	return rec, nil
}

func toRegistrantRecord(r apiRegistrant) *secondary.RegistrantRecord {
	name := r.DisplayName
	if name == "" {
		name = r.Contact.Name
	}
	return &secondary.RegistrantRecord{
		ID:                 r.ID,
		ContactID:          r.Contact.ID,
		DisplayName:        name,
		RegistrationTypeID: r.RegistrationTypeID,
		Status:             r.Status,
	}
}

// toContactRecord flattens the nested membership level and extracts the IDs
// referenced by list-valued fields such as Groups.
func toContactRecord(c apiContact) *secondary.ContactRecord {
	rec := &secondary.ContactRecord{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		Status:      c.Status,
	}
	if c.MembershipLevel != nil {
		id := c.MembershipLevel.ID
		rec.MembershipLevelID = &id
		rec.MembershipLevelName = c.MembershipLevel.Name
	}
	for _, fv := range c.FieldValues {
		refs, ok := decodeRefs(fv.Value)
		if !ok {
			continue
		}
		rec.FieldValues = append(rec.FieldValues, secondary.FieldValueItem{
			FieldName:  fv.FieldName,
			SystemCode: fv.SystemCode,
			RefIDs:     refs,
		})
	}
	return rec
}

// decodeRefs returns the IDs of a value that is a list of {Id, Label} objects.
func decodeRefs(raw json.RawMessage) ([]int, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []struct {
		ID *int `json:"Id"`
	}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	ids := make([]int, 0, len(items))
	for _, it := range items {
		if it.ID != nil {
			ids = append(ids, *it.ID)
		}
	}
	return ids, true
}
