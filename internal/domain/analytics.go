package domain

// ============================================================
// Period analytics (month / year views)
// ============================================================

// DayAmount is one entry of a month breakdown: total spend for a single day.
// Only days with at least one expense appear.
type DayAmount struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Amount float64 `json:"amount"`
}

// MonthAmount is one entry of a year breakdown. A year view always carries
// all 12 months, zero-filled for months without expenses.
type MonthAmount struct {
	Month  int     `json:"month"` // 1-12
	Amount float64 `json:"amount"`
}

// ModeCount names the payment mode used most often. Mode is null and Count
// zero when no expenses exist.
type ModeCount struct {
	Mode  *PaymentMode `json:"mode"`
	Count int          `json:"count"`
}

// ModeAmount names a payment mode and the total spent through it. Mode is
// null and Amount zero when no expenses exist.
type ModeAmount struct {
	Mode   *PaymentMode `json:"mode"`
	Amount float64      `json:"amount"`
}

// PeriodSummary is the computed analytics block for a month or year view.
// Exactly one of Daily/Monthly is set depending on the period kind.
type PeriodSummary struct {
	TotalAmount        float64                 `json:"totalAmount"`
	Daily              []DayAmount             `json:"daily,omitempty"`
	Monthly            []MonthAmount           `json:"monthly,omitempty"`
	PaymentModeAmounts map[PaymentMode]float64 `json:"paymentModes"`
	MostUsedMode       ModeCount               `json:"mostUsedPaymentMode"`
	HighestAmountMode  ModeAmount              `json:"highestAmountPaymentMode"`
}

// MonthViewData is the payload of GET /v1/expenses/analytics/month.
type MonthViewData struct {
	Expenses    []Expense      `json:"expenses"`
	TotalAmount float64        `json:"totalAmount"`
	Month       int            `json:"month"`
	Year        int            `json:"year"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Analytics   *PeriodSummary `json:"analytics"`
}

// YearViewData is the payload of GET /v1/expenses/analytics/year.
type YearViewData struct {
	Expenses    []Expense      `json:"expenses"`
	TotalAmount float64        `json:"totalAmount"`
	Year        int            `json:"year"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Analytics   *PeriodSummary `json:"analytics"`
}

// MetricsSnapshot is an in-process view of the service counters, exposed at
// /v1/metrics/summary for quick inspection without a Prometheus scrape.
type MetricsSnapshot struct {
	RequestsTotal   float64 `json:"requests_total"`
	ErrorsTotal     float64 `json:"errors_total"`
	CacheHits       float64 `json:"cache_hits"`
	CacheMisses     float64 `json:"cache_misses"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	ExpensesCreated float64 `json:"expenses_created"`
	OTPsIssued      float64 `json:"otps_issued"`
}
