// Package fsm drives one client session through the run workflow with the
// superfly/fsm library: accept the input files, submit once, save results.
// Every failure aborts the run. Transitions are never retried.
package fsm

import (
	"context"
	"sync"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/client"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/security"
	"github.com/superfly/fsm"
)

// Machine holds dependencies for FSM transitions
type Machine struct {
	catalog   *catalog.Catalog
	transport client.Transport
	images    *security.Validator
	saver     client.Saver

	mu       sync.Mutex
	sessions map[string]*client.Session
	outcomes map[string]RunResponse
}

// NewMachine creates a new FSM machine with dependencies
func NewMachine(cat *catalog.Catalog, transport client.Transport, images *security.Validator, saver client.Saver) *Machine {
	return &Machine{
		catalog:   cat,
		transport: transport,
		images:    images,
		saver:     saver,
		sessions:  make(map[string]*client.Session),
		outcomes:  make(map[string]RunResponse),
	}
}

// Register registers the run FSM
func (m *Machine) Register(ctx context.Context, manager *fsm.Manager) (fsm.Start[RunRequest, RunResponse], fsm.Resume, error) {
	start, resume, err := fsm.Register[RunRequest, RunResponse](manager, "tool-run").
		Start(StateAccept, m.handleAccept).
		To(StateSubmit, m.handleSubmit).
		To(StateSave, m.handleSave).
		End(StateFailed).
		Build(ctx)

	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to register FSM")
	}

	return start, resume, nil
}

// Outcome returns the final response of a finished run.
func (m *Machine) Outcome(runID string) (RunResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.outcomes[runID]
	return out, ok
}

func (m *Machine) finish(runID string, resp *RunResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[runID] = *resp
	delete(m.sessions, runID)
}
