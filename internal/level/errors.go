// SPDX-License-Identifier: BSD-3-Clause

package level

import "errors"

var (
	// ErrEmpty indicates a level table with no levels.
	ErrEmpty = errors.New("empty level table")
	// ErrInconsistent indicates a level table that fails the ordering,
	// overlap, strictness, or length-uniformity checks of spec.md §3/§4.7.
	ErrInconsistent = errors.New("inconsistent level table")
)
