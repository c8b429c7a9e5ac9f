package migration

import "stayvault/pkg/logger"

// DefaultEngine returns the engine with every known migration step
// registered. seedOperators feeds the operator allow-list migration;
// it may be empty.
func DefaultEngine(log *logger.Logger, seedOperators []string) (*Engine, error) {
	return NewEngine(log,
		PaymentRefBackfill{},
		NewOperatorSeeding(seedOperators),
	)
}
