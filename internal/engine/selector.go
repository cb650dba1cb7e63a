package engine

import "github.com/spiralogic/elemental/pkg/types"

// selectStrategy maps the primary element and the balance decision to the
// response technique for this turn. A non-empty balance element overrides
// mirroring: the response speaks in the counter-element's technique.
// With no primary and no balance the neutral default applies.
func selectStrategy(primary types.Element, bal BalanceDecision) types.Strategy {
	if bal.Element != "" {
		return types.StrategyForElement(bal.Element)
	}
	return types.StrategyForElement(primary)
}
