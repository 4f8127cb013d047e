package detection

import "sync"

// MockDetector replays a scripted sequence of detection results in
// tests; the last frame repeats once the script runs out.
type MockDetector struct {
	mu     sync.Mutex
	frames [][]Face
	errs   []error
	pos    int
	closed bool
}

// NewMock creates a detector that replays the given frames in order.
func NewMock(frames ...[]Face) *MockDetector {
	return &MockDetector{frames: frames}
}

// FailWith appends an erroring frame to the script.
func (m *MockDetector) FailWith(err error) *MockDetector {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, nil)
	for len(m.errs) < len(m.frames)-1 {
		m.errs = append(m.errs, nil)
	}
	m.errs = append(m.errs, err)
	return m
}

// Detect returns the next scripted result.
func (m *MockDetector) Detect(jpeg []byte) ([]Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.frames) == 0 {
		return nil, nil
	}

	i := m.pos
	if i >= len(m.frames) {
		i = len(m.frames) - 1
	} else {
		m.pos++
	}

	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.frames[i], nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
