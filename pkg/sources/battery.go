package sources

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/powerinfo"
)

// DefaultPowerSupplyDir is where the kernel exposes batteries.
const DefaultPowerSupplyDir = "/sys/class/power_supply"

// BatteryFetcher reads a single battery.
type BatteryFetcher = powerinfo.Fetcher

// Sysfs reads batteries from the power_supply class.
type Sysfs struct {
	// Dir defaults to DefaultPowerSupplyDir.
	Dir string
}

// NewSysfs returns a Sysfs fetcher rooted at dir.
func NewSysfs(dir string) *Sysfs {
	if dir == "" {
		dir = DefaultPowerSupplyDir
	}
	return &Sysfs{Dir: dir}
}

// FetchBattery reads one battery. Energy files (µWh, µW) are preferred;
// charge files (µAh, µA) are converted with the current voltage.
func (s *Sysfs) FetchBattery(id string) (powerinfo.Reading, error) {
	dir := filepath.Join(s.Dir, id)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return powerinfo.Reading{}, errors.Wrapf(ErrNotFound, "battery %s", id)
		}
		return powerinfo.Reading{}, errors.Wrapf(ErrIO, "battery %s: %v", id, err)
	}

	status, err := os.ReadFile(filepath.Join(dir, "status"))
	if err != nil {
		return powerinfo.Reading{}, errors.Wrapf(ErrIO, "battery %s status: %v", id, err)
	}

	var r powerinfo.Reading
	if exists(filepath.Join(dir, "energy_now")) {
		r, err = readEnergy(dir)
	} else {
		r, err = readCharge(dir)
	}
	if err != nil {
		return powerinfo.Reading{}, errors.Wrapf(err, "battery %s", id)
	}
	r.Status = powerinfo.ParseStatus(string(status), r.PowerWatts)

	logrus.WithFields(logrus.Fields{
		"battery":  id,
		"status":   r.Status,
		"power":    r.PowerWatts,
		"energy":   r.EnergyWattHours,
		"capacity": r.CapacityWattHours,
	}).Trace("read battery")

	return r.Normalize(), nil
}

func readEnergy(dir string) (powerinfo.Reading, error) {
	now, err := readMicro(dir, "energy_now")
	if err != nil {
		return powerinfo.Reading{}, err
	}
	full, err := readMicro(dir, "energy_full")
	if err != nil {
		return powerinfo.Reading{}, err
	}
	// Some firmware omits power_now while idle.
	power, err := readMicro(dir, "power_now")
	if errors.Is(err, ErrNotFound) {
		power, err = 0, nil
	}
	if err != nil {
		return powerinfo.Reading{}, err
	}
	return powerinfo.Reading{
		PowerWatts:        power,
		EnergyWattHours:   now,
		CapacityWattHours: full,
	}, nil
}

func readCharge(dir string) (powerinfo.Reading, error) {
	volts, err := readMicro(dir, "voltage_now")
	if err != nil {
		return powerinfo.Reading{}, err
	}
	now, err := readMicro(dir, "charge_now")
	if err != nil {
		return powerinfo.Reading{}, err
	}
	full, err := readMicro(dir, "charge_full")
	if err != nil {
		return powerinfo.Reading{}, err
	}
	current, err := readMicro(dir, "current_now")
	if errors.Is(err, ErrNotFound) {
		current, err = 0, nil
	}
	if err != nil {
		return powerinfo.Reading{}, err
	}
	return powerinfo.Reading{
		PowerWatts:        current * volts,
		EnergyWattHours:   now * volts,
		CapacityWattHours: full * volts,
	}, nil
}

// readMicro reads an integer attribute and scales it from micro-units.
func readMicro(dir, name string) (float64, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.Wrapf(ErrNotFound, "%s", name)
		}
		return 0, errors.Wrapf(ErrIO, "%s: %v", name, err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrParse, "%s: %q", name, strings.TrimSpace(string(b)))
	}
	return float64(v) / 1e6, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
