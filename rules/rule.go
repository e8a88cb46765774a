package rules

import "github.com/expr-lang/expr/vm"

// GoalFunc builds the goal a rule selects.
type GoalFunc func(env Env) Goal

// Rule is a condition → goal pair. The engine evaluates rules by priority
// and the first matching rule decides the next goal.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Goal         GoalFunc
}
