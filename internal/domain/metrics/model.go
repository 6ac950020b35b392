package metrics

// RevenuePoint is one day's worth of settled payment revenue.
type RevenuePoint struct {
	Day    string  `json:"day"`
	Amount float64 `json:"amount"`
}

// Overview aggregates the dashboard counters in a single payload.
type Overview struct {
	Patients             int            `json:"patients"`
	AppointmentsToday    map[string]int `json:"appointments_today"`
	ActiveDoctors        int            `json:"active_doctors"`
	AvgInsuranceCoverage float64        `json:"avg_insurance_coverage"`
	RevenueLast30Days    []RevenuePoint `json:"revenue_last_30_days"`
}
