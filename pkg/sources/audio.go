package sources

import (
	"os/exec"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Volume is the playback state of a mixer control.
type Volume struct {
	On      bool `json:"on"`
	Percent int  `json:"percent"`
}

// VolumeFetcher reads a mixer control.
type VolumeFetcher interface {
	FetchVolume(card, control string) (Volume, error)
}

var (
	percentRe = regexp.MustCompile(`\[(\d{1,3})%\]`)
	switchRe  = regexp.MustCompile(`\[(on|off)\]`)
)

// Amixer reads mixer controls by running amixer(1).
type Amixer struct {
	// run is replaced in tests.
	run func(name string, args ...string) ([]byte, error)
}

// NewAmixer returns an amixer-backed volume reader.
func NewAmixer() *Amixer {
	return &Amixer{run: runCommand}
}

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// FetchVolume runs `amixer -c <card> sget <control>`.
func (a *Amixer) FetchVolume(card, control string) (Volume, error) {
	args := []string{"sget", control}
	if card != "" && card != "default" {
		args = append([]string{"-c", card}, args...)
	}

	out, err := a.run("amixer", args...)
	if err != nil {
		return Volume{}, errors.Wrapf(ErrDevice, "amixer card %s control %s: %v", card, control, err)
	}

	v, err := ParseAmixer(out)
	if err != nil {
		return Volume{}, errors.Wrapf(err, "amixer card %s control %s", card, control)
	}

	logrus.WithFields(logrus.Fields{
		"card":    card,
		"control": control,
		"on":      v.On,
		"percent": v.Percent,
	}).Trace("read volume")

	return v, nil
}

// ParseAmixer extracts the first channel's volume and switch from
// `amixer sget` output. Controls without a playback switch are reported
// as on.
func ParseAmixer(out []byte) (Volume, error) {
	m := percentRe.FindSubmatch(out)
	if m == nil {
		return Volume{}, errors.Wrap(ErrParse, "no volume percentage")
	}
	p, err := strconv.Atoi(string(m[1]))
	if err != nil || p > 100 {
		return Volume{}, errors.Wrapf(ErrParse, "volume %q", m[1])
	}

	v := Volume{On: true, Percent: p}
	if s := switchRe.FindSubmatch(out); s != nil {
		v.On = string(s[1]) == "on"
	}
	return v, nil
}
