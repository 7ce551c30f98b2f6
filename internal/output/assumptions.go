package output

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Prices follow deterministic scenario paths; no volatility is simulated",
	"Historical lookups carry the last known close forward over gaps",
	"Fiat amounts are rounded to cents only for display",
	"Withdrawals stop once a period's withdrawal reaches the remaining balance",
}
