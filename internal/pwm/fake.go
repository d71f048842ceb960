package pwm

// FakeChannel records duty-cycle writes for test assertions.
type FakeChannel struct {
	// Max is returned by MaxDutyCycle.
	Max uint16

	// Duty is the last accepted duty value.
	Duty uint16

	// History contains every accepted duty value in order.
	History []uint16

	// Rejected counts writes that returned an error.
	Rejected int

	// SetError, if set, is returned by SetDutyCycle and the write is
	// not applied.
	SetError error
}

// NewFakeChannel creates a FakeChannel with the given maximum.
func NewFakeChannel(max uint16) *FakeChannel {
	return &FakeChannel{Max: max}
}

// MaxDutyCycle returns Max.
func (f *FakeChannel) MaxDutyCycle() uint16 {
	return f.Max
}

// SetDutyCycle records the write.
func (f *FakeChannel) SetDutyCycle(duty uint16) error {
	if duty > f.Max {
		f.Rejected++
		return ErrDutyOutOfRange
	}
	if f.SetError != nil {
		f.Rejected++
		return f.SetError
	}
	f.Duty = duty
	f.History = append(f.History, duty)
	return nil
}

// Reset clears recorded writes.
func (f *FakeChannel) Reset() {
	f.Duty = 0
	f.History = nil
	f.Rejected = 0
	f.SetError = nil
}
