package powerinfo

import "strings"

// Status represents the charging state of one battery, or of several
// batteries combined.
//
// The numeric order is the precedence used by Merge:
// Unknown < Charged < Discharging < Charging.
type Status int

const (
	// Unknown means no battery reported a usable state.
	Unknown Status = iota
	// Charged indicates the battery is full and idle.
	Charged
	// Discharging indicates the battery is powering the machine.
	Discharging
	// Charging indicates the battery is charging.
	Charging
)

// Statuses lists every Status in precedence order.
var Statuses = []Status{Unknown, Charged, Discharging, Charging}

func (s Status) String() string {
	switch s {
	case Charged:
		return "charged"
	case Discharging:
		return "discharging"
	case Charging:
		return "charging"
	default:
		return "unknown"
	}
}

// ParseStatus classifies the status word reported by the kernel. Idle
// states (Full, Not charging, Unknown) only count as charged when no power
// is drawn; otherwise the battery is discharging.
func ParseStatus(word string, powerWatts float64) Status {
	switch strings.TrimSpace(word) {
	case "Charging":
		return Charging
	case "Discharging":
		return Discharging
	case "Full", "Not charging", "Unknown":
		if powerWatts == 0 {
			return Charged
		}
		return Discharging
	default:
		return Unknown
	}
}

// Reading is a single battery sample.
// Units:
// - PowerWatts: W
// - EnergyWattHours, CapacityWattHours: Wh
type Reading struct {
	PowerWatts        float64 `json:"powerWatts"`
	EnergyWattHours   float64 `json:"energyWattHours"`
	CapacityWattHours float64 `json:"capacityWattHours"`
	Status            Status  `json:"status"`
}

// Normalize enforces capacity >= energy >= 0 and power >= 0.
func (r Reading) Normalize() Reading {
	if r.PowerWatts < 0 {
		r.PowerWatts = 0
	}
	if r.CapacityWattHours < 0 {
		r.CapacityWattHours = 0
	}
	if r.EnergyWattHours < 0 {
		r.EnergyWattHours = 0
	}
	if r.EnergyWattHours > r.CapacityWattHours {
		r.EnergyWattHours = r.CapacityWattHours
	}
	return r
}
