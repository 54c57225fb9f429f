// SPDX-License-Identifier: BSD-3-Clause

package config

import "errors"

// ErrInvalid indicates the built configuration fails the aggregate
// consistency checks of spec.md §3/§4.7 (the core's re-validation pass,
// independent of whatever the textual parser already checked).
var ErrInvalid = errors.New("invalid configuration")
