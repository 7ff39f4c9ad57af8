// Package lifecycle checks status histories against the expected workflow.
// The check is purely advisory data-quality reporting; it never influences
// metric values.
package lifecycle

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/metrics"
)

// Irregularity is one observed transition that falls outside the configured
// workflow.
type Irregularity struct {
	Index int    // index of the target entry in the filtered history
	From  string
	To    string
}

func (i Irregularity) String() string {
	return fmt.Sprintf("#%d %s -> %s", i.Index, i.From, i.To)
}

// Flow is the canonical status workflow derived from the metrics taxonomy:
// ready precedes work, work alternates with pause, external test follows
// work, the after-external-test chain and the done statuses close it, with
// reopen edges back to work.
type Flow struct {
	cfg   metrics.Config
	edges map[string][]string
}

// NewFlow derives the workflow from the taxonomy config.
func NewFlow(cfg metrics.Config) *Flow {
	dones := cfg.DoneStatuses.Statuses()

	edges := make(map[string][]string)
	add := func(from string, to ...string) {
		for _, t := range to {
			if from == "" || t == "" || from == t {
				continue
			}
			edges[from] = append(edges[from], t)
		}
	}

	add(cfg.ReadyStatus, cfg.WorkStartedStatus, cfg.PauseStatus)
	add(cfg.PauseStatus, cfg.WorkStartedStatus, cfg.ReadyStatus)
	add(cfg.WorkStartedStatus, cfg.PauseStatus, cfg.ExternalTestStatus)
	add(cfg.WorkStartedStatus, dones...)
	add(cfg.ExternalTestStatus, cfg.WorkStartedStatus)
	add(cfg.ExternalTestStatus, cfg.AfterExternalTest...)
	add(cfg.ExternalTestStatus, dones...)
	for i, a := range cfg.AfterExternalTest {
		add(a, cfg.AfterExternalTest[i+1:]...)
		add(a, dones...)
		add(a, cfg.WorkStartedStatus)
	}
	for _, d := range dones {
		add(d, cfg.WorkStartedStatus) // reopen
		add(d, dones...)
	}

	return &Flow{cfg: cfg, edges: edges}
}

// replayContext carries no data; the machine is driven entry by entry.
type replayContext struct{}

// Check replays a noise-filtered history through the workflow machine and
// returns the transitions the machine refused. The first entry seeds the
// machine; creation may land in any state.
func (f *Flow) Check(h history.History) ([]Irregularity, error) {
	s := history.FilterNoise(h, f.cfg.MinDuration)
	if len(s) < 2 {
		return nil, nil
	}

	edges := f.edges
	if seed := s[0].Status; len(edges[seed]) == 0 {
		// A creation status outside the configured taxonomy may move into
		// the regular flow without being flagged.
		edges = make(map[string][]string, len(f.edges)+1)
		for k, v := range f.edges {
			edges[k] = v
		}
		for _, t := range []string{f.cfg.ReadyStatus, f.cfg.WorkStartedStatus, f.cfg.PauseStatus} {
			if t != "" && t != seed {
				edges[seed] = append(edges[seed], t)
			}
		}
	}
	states := knownStates(edges, s[0].Status)

	builder := statekit.NewMachine[replayContext]("status-flow").
		WithInitial(statekit.StateID(s[0].Status)).
		WithContext(replayContext{})
	for _, st := range states {
		sb := builder.State(statekit.StateID(st))
		for _, target := range edges[st] {
			sb = sb.On(statekit.EventType("to:" + target)).Target(statekit.StateID(target)).End()
		}
		sb.Done()
	}
	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build workflow machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	var out []Irregularity
	for i := 1; i < len(s); i++ {
		from := string(interpreter.State().Value)
		to := s[i].Status
		interpreter.Send(statekit.Event{Type: statekit.EventType("to:" + to)})
		if string(interpreter.State().Value) != to {
			out = append(out, Irregularity{Index: i, From: from, To: to})
		}
	}
	return out, nil
}

// knownStates returns every status the machine must declare: edge endpoints
// plus the seed status of this history.
func knownStates(edges map[string][]string, seed string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	add(seed)
	for from, targets := range edges {
		add(from)
		for _, t := range targets {
			add(t)
		}
	}
	return out
}
