package observability

// Metric name prefixes
const (
	MetricPrefix = "cardswap"
)

// Metric names
const (
	// Discord metrics
	InteractionsTotal = MetricPrefix + ".interactions_total"

	// Trade metrics
	TradesProposedTotal  = MetricPrefix + ".trades.proposed_total"
	TradesCompletedTotal = MetricPrefix + ".trades.completed_total"
	TradesCancelledTotal = MetricPrefix + ".trades.cancelled_total"
	TradesOpen           = MetricPrefix + ".trades.open"
	TradeSettlement      = MetricPrefix + ".trades.settlement_seconds"
)

// Label keys
const (
	LabelType   = "type"
	LabelReason = "reason"
)

// Interaction types
const (
	InteractionTypeCommand   = "command"
	InteractionTypeComponent = "component"
	InteractionTypeModal     = "modal"
)
