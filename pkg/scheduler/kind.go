package scheduler

import (
	"fmt"

	"github.com/statusbar/dwmstatus/pkg/state"
)

// Kind identifies a tick stream. The numeric order is the dispatch
// priority when several ticks are ready at once.
type Kind int

const (
	NetworkTick Kind = iota
	DateTick
	BatteryTick
	// StatusTick refreshes the volume and renders the status line.
	StatusTick

	numKinds
)

// Kinds lists every tick kind in priority order.
var Kinds = []Kind{NetworkTick, DateTick, BatteryTick, StatusTick}

func (k Kind) String() string {
	switch k {
	case NetworkTick:
		return "network"
	case DateTick:
		return "date"
	case BatteryTick:
		return "battery"
	case StatusTick:
		return "status"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindOf returns the tick stream that refreshes category c.
func KindOf(c state.Category) Kind {
	switch c {
	case state.Network:
		return NetworkTick
	case state.Date:
		return DateTick
	case state.Battery:
		return BatteryTick
	default:
		return StatusTick
	}
}
