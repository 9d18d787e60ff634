package challenge

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

// Machine is the state machine of one challenge instance. It is not safe for
// concurrent use: the harness must apply operations one at a time.
type Machine struct {
	deployment   Deployment
	challenge    Challenge
	participants map[common.Address]*Participant
}

// New returns an instance that has been deployed but not created yet.
func New(deployment Deployment) *Machine {
	return &Machine{
		deployment:   deployment,
		challenge:    Challenge{Creator: deployment.Creator},
		participants: make(map[common.Address]*Participant),
	}
}

// Restore rebuilds a machine from persisted state.
func Restore(deployment Deployment, challenge Challenge, participants []Participant) *Machine {
	m := New(deployment)
	m.challenge = challenge
	m.challenge.Creator = deployment.Creator
	for i := range participants {
		p := participants[i]
		m.participants[p.Address] = &p
	}

	return m
}

// Apply runs an action against the current state. On error nothing has
// changed. On success the returned receipt lists every effect the harness must
// commit together with the new state.
func (m *Machine) Apply(call Call, action Action) (*Receipt, error) {
	if action == nil {
		return nil, errors.New("nil action")
	}

	r := &Receipt{Action: action.Type()}
	if err := action.apply(m, call, r); err != nil {
		return nil, err
	}

	m.challenge.Sequence++
	r.Sequence = m.challenge.Sequence
	slices.SortFunc(r.Touched, func(a, b common.Address) bool {
		return bytes.Compare(a.Bytes(), b.Bytes()) < 0
	})

	return r, nil
}

func (m *Machine) Deployment() Deployment {
	return m.deployment
}

// ChallengeInfo returns a snapshot of the global state.
func (m *Machine) ChallengeInfo() Challenge {
	return m.challenge
}

// ParticipantState returns a snapshot of the local state of addr.
func (m *Machine) ParticipantState(addr common.Address) Participant {
	if p, ok := m.participants[addr]; ok {
		return *p
	}

	return Participant{Address: addr}
}

// Participants returns all participant records in address order.
func (m *Machine) Participants() []Participant {
	result := make([]Participant, 0, len(m.participants))
	for _, p := range m.participants {
		result = append(result, *p)
	}

	slices.SortFunc(result, func(a, b Participant) bool {
		return bytes.Compare(a.Address.Bytes(), b.Address.Bytes()) < 0
	})

	return result
}

func (m *Machine) isCreator(addr common.Address) bool {
	return addr == m.deployment.Creator
}

func (m *Machine) eligible(addr common.Address) bool {
	p, ok := m.participants[addr]
	return ok && p.eligible()
}
