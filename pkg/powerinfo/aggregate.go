package powerinfo

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const noBatteryText = "no battery found"

// Fetcher reads one battery by its identifier (e.g. BAT0).
type Fetcher interface {
	FetchBattery(id string) (Reading, error)
}

// Merge combines the accumulated status with the next battery's status.
//
// It is the join of the total order Charging > Discharging > Charged > Unknown:
// one charging battery makes the whole pack charging, a discharging battery
// is never hidden by a later charged one, and Unknown never overrides
// anything.
func Merge(acc, next Status) Status {
	if next > acc {
		return next
	}
	return acc
}

// Combined is the logical battery made of every readable physical battery.
type Combined struct {
	Reading
	// Count is the number of batteries that were read successfully.
	Count int `json:"count"`
}

// Add folds one reading into the combined battery.
func (c *Combined) Add(r Reading) {
	c.PowerWatts += r.PowerWatts
	c.EnergyWattHours += r.EnergyWattHours
	c.CapacityWattHours += r.CapacityWattHours
	c.Status = Merge(c.Status, r.Status)
	c.Count++
}

// Aggregate reads every battery in order and combines the ones that could be
// read. Absent or unreadable batteries are skipped.
func Aggregate(ids []string, f Fetcher) Combined {
	var c Combined
	for _, id := range ids {
		r, err := f.FetchBattery(id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"battery": id,
				"error":   err,
			}).Trace("skipping battery")
			continue
		}
		c.Add(r.Normalize())
	}
	return c
}

// Percent returns the charge percentage. ok is false when there is no
// capacity to divide by.
func (c Combined) Percent() (percent float64, ok bool) {
	if c.CapacityWattHours == 0 {
		return 0, false
	}
	return 100 * c.EnergyWattHours / c.CapacityWattHours, true
}

// Remaining returns the hours left at the current power draw. ok is false
// when no power is drawn.
func (c Combined) Remaining() (hours float64, ok bool) {
	if c.PowerWatts == 0 {
		return 0, false
	}
	return c.EnergyWattHours / c.PowerWatts, true
}

// Text renders the combined battery for the status line.
func (c Combined) Text() string {
	percent, ok := c.Percent()
	if !ok {
		return noBatteryText
	}

	switch c.Status {
	case Charged:
		return "charged"
	case Charging:
		return fmt.Sprintf("%.2f%% (charging)", percent)
	case Discharging:
		hours, ok := c.Remaining()
		if !ok {
			return "charged"
		}
		return fmt.Sprintf("%.2f%% (%.2f hrs)", percent, hours)
	default:
		return noBatteryText
	}
}
