package bootstrap

import (
	"context"
	"errors"

	assemblyapp "asamblea/contexts/governance/assembly-service/application"
	assemblyerrors "asamblea/contexts/governance/assembly-service/domain/errors"
	balloterrors "asamblea/contexts/governance/ballot-service/domain/errors"
	ballotports "asamblea/contexts/governance/ballot-service/ports"
)

// assemblyGate projects assembly election state into the ballot service's
// gate view so ballots never import assembly types directly.
type assemblyGate struct {
	elections assemblyapp.ElectionService
	quorum    assemblyapp.QuorumService
}

func (g assemblyGate) Gate(ctx context.Context, electionID int64) (ballotports.ElectionGateView, error) {
	election, err := g.elections.Get(ctx, electionID)
	if err != nil {
		if errors.Is(err, assemblyerrors.ErrElectionNotFound) {
			return ballotports.ElectionGateView{}, balloterrors.ErrElectionNotFound
		}
		return ballotports.ElectionGateView{}, err
	}

	view := ballotports.ElectionGateView{
		Status:     string(election.Status),
		VotingOpen: election.VotingOpen,
		IsDemo:     election.IsDemo,
		MinQuorum:  election.MinQuorum,
	}
	// The live quorum fraction is only needed when the election carries a
	// minimum to gate against.
	if election.MinQuorum != nil {
		summary, err := g.quorum.Summary(ctx, electionID)
		if err != nil {
			return ballotports.ElectionGateView{}, err
		}
		view.Quorum = summary.PorcentajeQuorum
	}
	return view, nil
}

var _ ballotports.ElectionGate = assemblyGate{}
