package strategy

import "backtest-playback/internal/model"

// Position is the trade a strategy holds when it is asked to decide.
type Position struct {
	Open  bool
	Entry float64
	Stop  float64
}

type Context struct {
	Index    int
	Bar      model.Bar
	Position Position
}

type Action string

const (
	Hold  Action = "HOLD"
	Enter Action = "ENTER"
	Exit  Action = "EXIT"
)

// Decision is what to do at a bar. Stop is the protective stop to carry
// after an Enter or Hold; it is ignored for Exit.
type Decision struct {
	Action Action
	Stop   float64
}

type Strategy interface {
	Name() string
	Decide(ctx Context) Decision
}
