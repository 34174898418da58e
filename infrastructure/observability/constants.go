package observability

// Metric name prefixes
const (
	MetricPrefix = "fundledger"
)

// Metric names
const (
	// Confirmation metrics
	ConfirmationsTotal   = MetricPrefix + ".confirmations.total"
	ConfirmationDuration = MetricPrefix + ".confirmations.duration"
	VariancesTotal       = MetricPrefix + ".confirmations.variances_total"
	InvestmentsFunded    = MetricPrefix + ".investments.funded_total"

	// Aggregate metrics
	FundTotalsRecomputedTotal = MetricPrefix + ".fund_totals.recomputed_total"

	// Event metrics
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
)

// Label keys
const (
	LabelOutcome   = "outcome"
	LabelDirection = "direction"
	LabelEventType = "event_type"
	LabelDrifted   = "drifted"
)

// Confirmation outcomes other than error codes
const (
	OutcomeConfirmed = "confirmed"
)

// Variance directions
const (
	DirectionShortfall = "shortfall"
	DirectionOverage   = "overage"
)
