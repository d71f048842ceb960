package gpio

import "context"

// FakeInput is a test double that returns scripted contact levels.
type FakeInput struct {
	// Samples contains scripted levels to return. Each call to Read
	// consumes the next one; once exhausted the last one repeats.
	// When empty, Level is returned.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Level is returned when no samples are scripted.
	Level bool

	// Reads counts calls to Read.
	Reads int

	// ReadError, if set, will be returned by Read().
	ReadError error
}

// NewFakeInput creates a FakeInput with the given samples.
func NewFakeInput(samples ...bool) *FakeInput {
	return &FakeInput{Samples: samples}
}

// Read returns the next scripted level.
func (f *FakeInput) Read() (bool, error) {
	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return f.Level, nil
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Set drops any scripted samples and holds the contact at level.
func (f *FakeInput) Set(level bool) {
	f.Samples = nil
	f.index = 0
	f.Level = level
}

// Reset rewinds the scripted samples.
func (f *FakeInput) Reset() {
	f.index = 0
	f.Reads = 0
}

// FakeWaiter is a test double for EdgeWaiter.
type FakeWaiter struct {
	// Waits counts calls to WaitForPress.
	Waits int

	// Err, if set, is returned by WaitForPress.
	Err error

	// OnWait, if set, runs inside WaitForPress before it returns, so tests
	// can model what the press did to the rest of the hardware.
	OnWait func()
}

// WaitForPress returns at once unless the context is done or Err is set.
func (f *FakeWaiter) WaitForPress(ctx context.Context) error {
	f.Waits++
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Err != nil {
		return f.Err
	}
	if f.OnWait != nil {
		f.OnWait()
	}
	return nil
}
