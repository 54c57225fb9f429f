// SPDX-License-Identifier: BSD-3-Clause

package driver

import "sync/atomic"

// Policy carries the process-wide switches that influence every Driver's
// robustOp decision. Thinkfan has exactly one Policy per running daemon;
// it is shared by every sensor and fan driver instance, mirroring the
// original's handful of process-global flags (tolerate_errors, chk_sanity).
type Policy struct {
	tolerateErrors int32
	chkSanity      bool
	// AssumeResumeSafe widens robustOp to treat every recognized I/O error
	// as tolerable, independent of tolerateErrors or max_errors. Set by -z.
	AssumeResumeSafe bool
}

// NewPolicy returns a Policy with sanity checks enabled, matching the
// daemon's default posture absent -D.
func NewPolicy() *Policy {
	return &Policy{chkSanity: true}
}

// SetChkSanity toggles sanity checks (-D disables them).
func (p *Policy) SetChkSanity(on bool) { p.chkSanity = on }

// ChkSanity reports whether sanity checks are currently enabled.
func (p *Policy) ChkSanity() bool { return p.chkSanity }

// SetTolerateErrors is invoked by the control loop's SIGUSR2 handler to grant
// one cycle of leniency across every driver, and cleared after that cycle.
func (p *Policy) SetTolerateErrors(on bool) {
	var v int32
	if on {
		v = 1
	}
	atomic.StoreInt32(&p.tolerateErrors, v)
}

// TolerateErrors reports the current one-shot leniency flag.
func (p *Policy) TolerateErrors() bool {
	return atomic.LoadInt32(&p.tolerateErrors) != 0
}
