package registration

// Resolve turns an access control rule into the concrete level and group ID sets
// whose members may register for the event.
// Rules:
// - AvailableForAnyLevel selects every account membership level
// - AvailableForAnyGroup selects every account member group
// - a missing rule is a ConfigurationError
func Resolve(rule *AccessControlRule, allLevelIDs, allGroupIDs IDSet) (levelIDs, groupIDs IDSet, err error) {
	if rule == nil {
		return nil, nil, &ConfigurationError{Reason: "event has no access control section"}
	}

	if rule.AvailableForAnyLevel {
		levelIDs = allLevelIDs.Clone()
	} else {
		levelIDs = rule.AllowedLevelIDs.Clone()
	}

	if rule.AvailableForAnyGroup {
		groupIDs = allGroupIDs.Clone()
	} else {
		groupIDs = rule.AllowedGroupIDs.Clone()
	}

	return levelIDs, groupIDs, nil
}

// LevelIDs collects the IDs of a membership level catalog.
func LevelIDs(levels []MembershipLevel) IDSet {
	s := make(IDSet, len(levels))
	for _, l := range levels {
		s.Add(l.ID)
	}
	return s
}

// GroupIDs collects the IDs of a member group catalog.
func GroupIDs(groups []MemberGroup) IDSet {
	s := make(IDSet, len(groups))
	for _, g := range groups {
		s.Add(g.ID)
	}
	return s
}
