package registration

// BuildEligible returns the IDs of contacts allowed to register.
// A contact qualifies by membership level OR by any member group; the two
// paths are independent. Contacts without a Groups field can only qualify by level.
func BuildEligible(contacts []Contact, levelIDs, groupIDs IDSet) IDSet {
	eligible := make(IDSet)
	for _, c := range contacts {
		if c.MembershipLevelID != nil && levelIDs.Contains(*c.MembershipLevelID) {
			eligible.Add(c.ID)
			continue
		}
		if ids, ok := c.GroupIDs(); ok && groupIDs.ContainsAny(ids) {
			eligible.Add(c.ID)
		}
	}
	return eligible
}
