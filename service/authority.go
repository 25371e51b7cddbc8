package service

import (
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/setup"
	"go.dedis.ch/returncodes/votesim"
)

// NewAuthority returns a setup authority that configures card sets on the
// conodes of a roster.
func NewAuthority(roster *onet.Roster, grp *group.GqGroup) (*setup.Authority, error) {
	nodes, err := NewRemoteNodes(roster, grp)
	if err != nil {
		return nil, err
	}
	a := &setup.Authority{Group: grp, ChunkSize: lib.DefaultChunkSize}
	for _, n := range nodes {
		a.Nodes = append(a.Nodes, n)
	}
	return a, nil
}

// VotingNodes returns the nodes of a roster as seen by a voting server.
func VotingNodes(roster *onet.Roster, grp *group.GqGroup) ([]votesim.Node, error) {
	nodes, err := NewRemoteNodes(roster, grp)
	if err != nil {
		return nil, err
	}
	out := make([]votesim.Node, len(nodes))
	for j, n := range nodes {
		out[j] = n
	}
	return out, nil
}
