package ledgerv1

// GetTripID returns the trip a request addresses, or "" for a nil message.
// Interceptors use it to tag logs without knowing the concrete type.
func (m *GetTripRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *AddParticipantRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *ListParticipantsRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *RemoveParticipantRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *RecordExpenseRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *PreviewSplitRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *EditExpenseRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *DeleteExpenseRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *GetExpenseRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *ListExpensesRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *RecordSettlementRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *ListSettlementsRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *DeleteSettlementRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}

func (m *GetBalancesRequest) GetTripID() string {
	if m == nil {
		return ""
	}
	return m.TripID
}
