// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"

	"github.com/thinkfan-go/thinkfan/internal/config"
	"github.com/thinkfan-go/thinkfan/internal/driver"
)

// ErrConfigParsingOutOfScope is returned by loadConfigFile: the textual
// config grammar (YAML/legacy) is explicitly out of scope for this module
// (see SPEC_FULL.md §1) — the core accepts an already-built *config.Config,
// assembled from sensor.Driver, fan.Driver and level.Table values by a
// caller that owns the textual grammar.
var ErrConfigParsingOutOfScope = errors.New("textual configuration file parsing is out of scope for this build")

// loadConfigFile would translate the on-disk config document into a
// *config.Config. Embedders that need -c support link their own grammar
// here; see internal/config for the programmatic assembly API it targets.
func loadConfigFile(path string, policy *driver.Policy) (*config.Config, error) {
	return nil, ErrConfigParsingOutOfScope
}
