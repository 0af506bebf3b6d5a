package wildapricot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/watools/internal/ports/secondary"
)

// FetchAccounts retrieves the accounts visible to the credentials.
func (c *Client) FetchAccounts(ctx context.Context) ([]*secondary.AccountRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "accounts", nil)
	if err != nil {
		return nil, err
	}

	var accounts []apiAccount
	if err := decodeList(body, "Accounts", &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	records := make([]*secondary.AccountRecord, 0, len(accounts))
	for _, a := range accounts {
		records = append(records, toAccountRecord(a))
	}
	return records, nil
}

// FetchEvents retrieves the events of an account.
func (c *Client) FetchEvents(ctx context.Context, accountID int) ([]*secondary.EventRecord, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("accounts/%d/events", accountID), nil)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := decodeList(body, "Events", &raws); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	records := make([]*secondary.EventRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := toEventRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchEvent retrieves one event with its access control section expanded.
func (c *Client) FetchEvent(ctx context.Context, accountID, eventID int) (*secondary.EventRecord, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("accounts/%d/events/%d?$expand=AccessControl", accountID, eventID), nil)
	if err != nil {
		return nil, err
	}

	rec, err := toEventRecord(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode event %d: %w", eventID, err)
	}
	return rec, nil
}

// FetchRegistrants retrieves the current registrations of an event.
func (c *Client) FetchRegistrants(ctx context.Context, accountID, eventID int) ([]*secondary.RegistrantRecord, error) {
	return c.fetchRegistrations(ctx, fmt.Sprintf("accounts/%d/eventregistrations?eventId=%d", accountID, eventID))
}

// IsRegistered reports whether a contact already holds a registration for an event.
func (c *Client) IsRegistered(ctx context.Context, accountID, eventID, contactID int) (bool, error) {
	regs, err := c.fetchRegistrations(ctx, fmt.Sprintf("accounts/%d/eventregistrations?eventId=%d&contactId=%d", accountID, eventID, contactID))
	if err != nil {
		return false, err
	}
	for _, r := range regs {
		if r.ContactID == contactID {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) fetchRegistrations(ctx context.Context, endpoint string) ([]*secondary.RegistrantRecord, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var regs []apiRegistrant
	if err := decodeList(body, "EventRegistrations", &regs); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}

	records := make([]*secondary.RegistrantRecord, 0, len(regs))
	for _, r := range regs {
		records = append(records, toRegistrantRecord(r))
	}
	return records, nil
}

// FetchContacts retrieves all non-archived contacts. The API answers large
// contact queries asynchronously; the result URL is polled until complete.
func (c *Client) FetchContacts(ctx context.Context, accountID int) ([]*secondary.ContactRecord, error) {
	endpoint := fmt.Sprintf("accounts/%d/contacts?$filter=IsArchived%%20eq%%20false&$select=*", accountID)

	var resp apiContactsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	polls := 0
	for resp.Contacts == nil && resp.ResultURL != "" {
		if resp.State == "Failed" {
			return nil, fmt.Errorf("contacts query %s failed", resp.ResultID)
		}
		if polls >= c.maxPolls {
			return nil, fmt.Errorf("contacts query not complete after %d polls (state %q)", polls, resp.State)
		}
		if resp.State != "Complete" {
			if err := c.sleep(ctx, c.pollInterval); err != nil {
				return nil, err
			}
		}
		polls++

		next := resp.ResultURL
		resp = apiContactsResponse{}
		if err := c.getJSON(ctx, next, &resp); err != nil {
			return nil, err
		}
		c.log.Tracef("contacts query poll %d: state %q", polls, resp.State)
	}

	records := make([]*secondary.ContactRecord, 0, len(resp.Contacts))
	for _, contact := range resp.Contacts {
		records = append(records, toContactRecord(contact))
	}
	c.log.Debugf("fetched %d contacts", len(records))
	return records, nil
}

// FetchMembershipLevels retrieves the account's membership level catalog.
func (c *Client) FetchMembershipLevels(ctx context.Context, accountID int) ([]*secondary.MembershipLevelRecord, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("accounts/%d/membershiplevels", accountID), nil)
	if err != nil {
		return nil, err
	}

	var levels []apiRef
	if err := decodeList(body, "MembershipLevels", &levels); err != nil {
		return nil, fmt.Errorf("failed to decode membership levels: %w", err)
	}

	records := make([]*secondary.MembershipLevelRecord, 0, len(levels))
	for _, l := range levels {
		records = append(records, &secondary.MembershipLevelRecord{ID: l.ID, Name: l.Name})
	}
	return records, nil
}

// FetchMemberGroups retrieves the account's member group catalog.
func (c *Client) FetchMemberGroups(ctx context.Context, accountID int) ([]*secondary.MemberGroupRecord, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("accounts/%d/membergroups", accountID), nil)
	if err != nil {
		return nil, err
	}

	var groups []apiMemberGroup
	if err := decodeList(body, "MemberGroups", &groups); err != nil {
		return nil, fmt.Errorf("failed to decode member groups: %w", err)
	}

	records := make([]*secondary.MemberGroupRecord, 0, len(groups))
	for _, g := range groups {
		records = append(records, &secondary.MemberGroupRecord{
			ID:           g.ID,
			Name:         g.Name,
			Description:  g.Description,
			ContactCount: g.ContactsCount,
		})
	}
	return records, nil
}

// SubmitRegistration creates one confirmed registration.
// Transport failures and 5xx responses wrap secondary.ErrOutcomeUnknown because
// the server may have created the registration before the failure.
func (c *Client) SubmitRegistration(ctx context.Context, sub secondary.RegistrationSubmission) error {
	payload := apiRegistrationPayload{
		Contact:            apiIDRef{ID: sub.ContactID},
		Event:              apiIDRef{ID: sub.EventID},
		RegistrationTypeID: sub.RegistrationTypeID,
		IsCheckedIn:        false,
		Status:             "Confirmed",
	}

	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("accounts/%d/eventregistrations", sub.AccountID), payload)
	if err == nil {
		return nil
	}

	var te *transportError
	if errors.As(err, &te) && ctx.Err() == nil {
		return fmt.Errorf("%w: %w", secondary.ErrOutcomeUnknown, err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
		return fmt.Errorf("%w: %w", secondary.ErrOutcomeUnknown, err)
	}
	return err
}

var _ secondary.WildApricotClient = (*Client)(nil)
