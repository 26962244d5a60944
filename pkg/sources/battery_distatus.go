package sources

import (
	"strconv"
	"strings"

	"github.com/distatus/battery"
	"github.com/pkg/errors"

	"github.com/statusbar/dwmstatus/pkg/powerinfo"
)

// Distatus reads batteries through github.com/distatus/battery. Battery ids
// are mapped to indexes: BAT0 is index 0.
type Distatus struct {
	get func(idx int) (*battery.Battery, error)
}

// NewDistatus returns a Distatus fetcher.
func NewDistatus() *Distatus {
	return &Distatus{get: battery.Get}
}

// FetchBattery reads one battery.
func (d *Distatus) FetchBattery(id string) (powerinfo.Reading, error) {
	idx, err := batteryIndex(id)
	if err != nil {
		return powerinfo.Reading{}, err
	}

	b, err := d.get(idx)
	if b == nil {
		if err == nil {
			err = ErrNotFound
		}
		return powerinfo.Reading{}, errors.Wrapf(ErrNotFound, "battery %s: %v", id, err)
	}
	// Partial errors still leave usable fields; only fail when the energy
	// figures themselves are missing.
	var partial battery.ErrPartial
	if errors.As(err, &partial) {
		if partial.Current != nil || partial.Full != nil {
			return powerinfo.Reading{}, errors.Wrapf(ErrDevice, "battery %s: %v", id, err)
		}
	} else if err != nil {
		return powerinfo.Reading{}, errors.Wrapf(ErrDevice, "battery %s: %v", id, err)
	}

	return fromDistatus(b), nil
}

// fromDistatus converts mWh/mW figures to a Reading.
func fromDistatus(b *battery.Battery) powerinfo.Reading {
	r := powerinfo.Reading{
		PowerWatts:        b.ChargeRate / 1000,
		EnergyWattHours:   b.Current / 1000,
		CapacityWattHours: b.Full / 1000,
	}
	if r.PowerWatts < 0 {
		r.PowerWatts = -r.PowerWatts
	}

	switch b.State {
	case battery.Charging:
		r.Status = powerinfo.Charging
	case battery.Discharging:
		r.Status = powerinfo.Discharging
	case battery.Full, battery.Empty, battery.Unknown:
		r.Status = powerinfo.ParseStatus("Unknown", r.PowerWatts)
	default:
		r.Status = powerinfo.Unknown
	}
	return r.Normalize()
}

func batteryIndex(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(id), "BAT"))
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrNotFound, "battery id %q", id)
	}
	return n, nil
}
