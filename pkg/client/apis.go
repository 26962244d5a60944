package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/statusbar/dwmstatus/pkg/config"
	"github.com/statusbar/dwmstatus/pkg/types"
)

func (c *Client) GetStatus() (*types.Status, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}

	var st types.Status
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) GetVersion() (*types.Version, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get version")
	}

	var v types.Version
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return &v, nil
}

// Refresh asks the daemon to re-sample the named categories now, or every
// category when none is given. It returns the categories accepted.
func (c *Client) Refresh(categories ...string) ([]string, error) {
	if categories == nil {
		categories = []string{}
	}
	payload, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}

	ret, err := c.Post("/refresh", string(payload))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to request refresh")
	}

	var accepted []string
	if err := json.Unmarshal([]byte(ret), &accepted); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal refresh response")
	}
	return accepted, nil
}
