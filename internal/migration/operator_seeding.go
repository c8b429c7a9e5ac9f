package migration

import (
	"fmt"

	"stayvault/internal/state"
)

// OperatorSeedingVersion introduced the persisted operator allow-list.
const OperatorSeedingVersion uint64 = 1002

// AnonymousIdentity is the placeholder identity of unauthenticated
// callers. It can never be granted operator access.
const AnonymousIdentity = "anonymous"

// OperatorSeeding writes an initial operator allow-list into the
// container so admin operations are reachable after the upgrade. A
// container that already carries a non-empty allow-list is left
// untouched.
type OperatorSeeding struct {
	Operators []string
}

func NewOperatorSeeding(operators []string) OperatorSeeding {
	return OperatorSeeding{Operators: operators}
}

func (OperatorSeeding) Version() uint64 { return OperatorSeedingVersion }

func (OperatorSeeding) Description() string {
	return "seed the persisted operator allow-list"
}

func (s OperatorSeeding) Up(c *state.Container) error {
	for _, op := range s.Operators {
		if op == "" || op == AnonymousIdentity {
			return fmt.Errorf("refusing to seed operator identity %q", op)
		}
	}
	// An allow-list populated before the upgrade is authoritative.
	if len(c.Operators) > 0 {
		return nil
	}
	for _, op := range s.Operators {
		if err := c.AddOperator(op); err != nil {
			return err
		}
	}
	return nil
}

func (s OperatorSeeding) Down(c *state.Container) error {
	// Only undo a list this step wrote; one the operators have since
	// edited, or that predates the upgrade, stays as it is.
	if !s.seededList(c.Operators) {
		return nil
	}
	c.Operators = nil
	return nil
}

func (s OperatorSeeding) Validate(c *state.Container) error {
	if c.IsOperator(AnonymousIdentity) {
		return fmt.Errorf("allow-list contains the %s identity", AnonymousIdentity)
	}
	if len(c.Operators) == 0 && len(s.Operators) > 0 {
		return fmt.Errorf("operator allow-list is empty after seeding")
	}
	return nil
}

func (s OperatorSeeding) seededList(current []string) bool {
	if len(current) != len(s.Operators) {
		return false
	}
	for i, op := range s.Operators {
		if current[i] != op {
			return false
		}
	}
	return len(current) > 0
}
