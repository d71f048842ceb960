package watchdog

import "time"

// Fake records watchdog usage for test assertions.
type Fake struct {
	Armed   bool
	Timeout time.Duration

	Arms    int
	Pets    int
	Disarms int

	// PetTimes records Now() at every successful pet when Now is set.
	PetTimes []time.Duration
	Now      func() time.Duration

	// PetError, if set, is returned by Pet.
	PetError error
	// ArmError, if set, is returned by Arm.
	ArmError error
}

// Arm records the timeout and marks the watchdog armed.
func (f *Fake) Arm(timeout time.Duration) error {
	if f.ArmError != nil {
		return f.ArmError
	}
	f.Armed = true
	f.Timeout = timeout
	f.Arms++
	return nil
}

// Pet counts a keepalive. Petting a disarmed watchdog returns ErrNotArmed.
func (f *Fake) Pet() error {
	if f.PetError != nil {
		return f.PetError
	}
	if !f.Armed {
		return ErrNotArmed
	}
	f.Pets++
	if f.Now != nil {
		f.PetTimes = append(f.PetTimes, f.Now())
	}
	return nil
}

// Disarm marks the watchdog disarmed.
func (f *Fake) Disarm() error {
	f.Armed = false
	f.Disarms++
	return nil
}
