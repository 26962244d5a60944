package sources

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amixerOn = `Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 87
  Mono:
  Front Left: Playback 61 [70%] [-19.50dB] [on]
  Front Right: Playback 61 [70%] [-19.50dB] [on]
`

const amixerOff = `Simple mixer control 'Master',0
  Capabilities: pvolume pvolume-joined pswitch pswitch-joined
  Playback channels: Mono
  Limits: Playback 0 - 31
  Mono: Playback 31 [100%] [0.00dB] [off]
`

func TestParseAmixer(t *testing.T) {
	v, err := ParseAmixer([]byte(amixerOn))
	require.NoError(t, err)
	assert.Equal(t, Volume{On: true, Percent: 70}, v)

	v, err = ParseAmixer([]byte(amixerOff))
	require.NoError(t, err)
	assert.Equal(t, Volume{On: false, Percent: 100}, v)

	v, err = ParseAmixer([]byte("  Mono: Playback 5 [5%]\n"))
	require.NoError(t, err)
	assert.Equal(t, Volume{On: true, Percent: 5}, v)

	_, err = ParseAmixer([]byte("Simple mixer control 'Capture',0\n"))
	assert.True(t, errors.Is(err, ErrParse), "got %v", err)

	_, err = ParseAmixer([]byte("Mono: Playback [250%] [on]\n"))
	assert.True(t, errors.Is(err, ErrParse), "got %v", err)
}

func TestAmixerFetch(t *testing.T) {
	var gotArgs []string
	a := &Amixer{run: func(name string, args ...string) ([]byte, error) {
		assert.Equal(t, "amixer", name)
		gotArgs = args
		return []byte(amixerOn), nil
	}}

	v, err := a.FetchVolume("1", "Master")
	require.NoError(t, err)
	assert.Equal(t, Volume{On: true, Percent: 70}, v)
	assert.Equal(t, []string{"-c", "1", "sget", "Master"}, gotArgs)

	_, err = a.FetchVolume("default", "PCM")
	require.NoError(t, err)
	assert.Equal(t, []string{"sget", "PCM"}, gotArgs)

	a.run = func(string, ...string) ([]byte, error) { return nil, errors.New("exit status 1") }
	_, err = a.FetchVolume("default", "Master")
	assert.True(t, errors.Is(err, ErrDevice), "got %v", err)
}
