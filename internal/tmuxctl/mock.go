package tmuxctl

import "strings"

// MockRunner is a scripted Runner for tests. Responses are queued per tmux
// subcommand; the last queued response for a subcommand is sticky so polling
// loops keep receiving it.
type MockRunner struct {
	Calls [][]string

	queue map[string][]mockResponse
}

type mockResponse struct {
	out string
	err error
}

func NewMockRunner() *MockRunner {
	return &MockRunner{queue: make(map[string][]mockResponse)}
}

// Stub queues a response for the given tmux subcommand.
func (m *MockRunner) Stub(subcommand, out string, err error) {
	m.queue[subcommand] = append(m.queue[subcommand], mockResponse{out: out, err: err})
}

func (m *MockRunner) Run(args ...string) (string, error) {
	m.Calls = append(m.Calls, args)

	if len(args) == 0 {
		return "", nil
	}
	q := m.queue[args[0]]
	if len(q) == 0 {
		return "", nil
	}
	resp := q[0]
	if len(q) > 1 {
		m.queue[args[0]] = q[1:]
	}
	return resp.out, resp.err
}

// CallsFor returns the recorded invocations of one subcommand.
func (m *MockRunner) CallsFor(subcommand string) [][]string {
	var calls [][]string
	for _, c := range m.Calls {
		if len(c) > 0 && c[0] == subcommand {
			calls = append(calls, c)
		}
	}
	return calls
}

// Joined renders every recorded call as a single string, for substring
// assertions.
func (m *MockRunner) Joined() string {
	var sb strings.Builder
	for _, c := range m.Calls {
		sb.WriteString(strings.Join(c, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}
