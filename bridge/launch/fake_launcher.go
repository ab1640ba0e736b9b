package launch

import "sync"

// FakeLauncher is a test double for HostLauncher: instead of exec'ing
// anything, it records the launch request and lets the test decide what
// "running" means.
type FakeLauncher struct {
	mu       sync.Mutex
	Launches []FakeLaunch

	// Handle, if set, is returned for every Launch call. Err, if set, is
	// returned instead.
	Handle ChildHandle
	Err    error

	// TranslatedPath and TranslateErr control HostPathToSubsystemPath.
	TranslatedPath string
	TranslateErr   error
}

// FakeLaunch records one call to Launch.
type FakeLaunch struct {
	SubsystemPath string
	Args          []string
}

func (f *FakeLauncher) Launch(subsystemPath string, args []string) (ChildHandle, error) {
	f.mu.Lock()
	f.Launches = append(f.Launches, FakeLaunch{SubsystemPath: subsystemPath, Args: args})
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Handle != nil {
		return f.Handle, nil
	}
	return &FakeChildHandle{}, nil
}

// HostPathToSubsystemPath returns hostPath unchanged unless TranslateErr
// or TranslatedPath is set, so tests default to a no-op translation.
func (f *FakeLauncher) HostPathToSubsystemPath(hostPath string) (string, error) {
	if f.TranslateErr != nil {
		return "", f.TranslateErr
	}
	if f.TranslatedPath != "" {
		return f.TranslatedPath, nil
	}
	return hostPath, nil
}

// SubsystemPathToHostPath returns subsystemPath unchanged unless
// TranslateErr or TranslatedPath is set, so tests default to a no-op
// translation.
func (f *FakeLauncher) SubsystemPathToHostPath(subsystemPath string) (string, error) {
	if f.TranslateErr != nil {
		return "", f.TranslateErr
	}
	if f.TranslatedPath != "" {
		return f.TranslatedPath, nil
	}
	return subsystemPath, nil
}

// FakeChildHandle is a no-op ChildHandle for tests.
type FakeChildHandle struct {
	SignalCalled bool
	WaitCalled   bool
	SignalErr    error
	WaitErr      error
}

func (h *FakeChildHandle) Pid() int { return 42 }

func (h *FakeChildHandle) Signal() error {
	h.SignalCalled = true
	return h.SignalErr
}

func (h *FakeChildHandle) Wait() error {
	h.WaitCalled = true
	return h.WaitErr
}
