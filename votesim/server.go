package votesim

import (
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Node is a control component as seen by the voting server. *ccr.Node
// implements it in-process, service.RemoteNode over the network.
type Node interface {
	PartialDecrypt(ee, vcs string, b *ccr.Ballot) (*ccr.PartialDecryption, error)
	DecryptPCC(ee, vcs string, b *ccr.Ballot, partials []*ccr.PartialDecryption) (group.GqVector, error)
	CreateLCCShare(ee, vcs, vcID string, pCC group.GqVector) (*ccr.LCCShare, error)
	CreateLVCCShare(ee, vcs, vcID string, ck group.GqElement) (*ccr.LVCCShare, error)
	VerifyLVCCHash(ee, vcs, vcID string, hashedShares []string) (bool, error)
}

// eachNode calls f on every node in parallel. nodes[j] is node j+1.
func eachNode(nodes []Node, f func(j int, n Node) error) error {
	if len(nodes) != returncodes.NumberOfNodes {
		return returncodes.Validationf("expected %d nodes, got %d", returncodes.NumberOfNodes, len(nodes))
	}
	var eg errgroup.Group
	for j, n := range nodes {
		j, n := j, n
		eg.Go(func() error {
			if err := f(j, n); err != nil {
				return xerrors.Errorf("node %d: %w", j+1, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// SendVote runs a ballot through the nodes and returns their long Choice
// Return Code shares.
func SendVote(ctx lib.SetupContext, nodes []Node, b *ccr.Ballot) ([]*ccr.LCCShare, error) {
	ee, vcs := ctx.ElectionEventID, ctx.VerificationCardSetID
	partials := make([]*ccr.PartialDecryption, len(nodes))
	err := eachNode(nodes, func(j int, n Node) error {
		var err error
		partials[j], err = n.PartialDecrypt(ee, vcs, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	shares := make([]*ccr.LCCShare, len(nodes))
	err = eachNode(nodes, func(j int, n Node) error {
		pCC, err := n.DecryptPCC(ee, vcs, b, partials)
		if err != nil {
			return err
		}
		shares[j], err = n.CreateLCCShare(ee, vcs, b.VerificationCardID, pCC)
		return err
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// ConfirmVote sends a confirmation key through the nodes and returns their
// long Vote Cast Return Code shares once every node accepted the hashed
// shares.
func ConfirmVote(ctx lib.SetupContext, nodes []Node, vcID string, ck group.GqElement) ([]*ccr.LVCCShare, error) {
	ee, vcs := ctx.ElectionEventID, ctx.VerificationCardSetID
	shares := make([]*ccr.LVCCShare, len(nodes))
	err := eachNode(nodes, func(j int, n Node) error {
		var err error
		shares[j], err = n.CreateLVCCShare(ee, vcs, vcID, ck)
		return err
	})
	if err != nil {
		return nil, err
	}
	hashed := make([]string, len(shares))
	for j, s := range shares {
		hashed[j] = s.HashedShare
	}
	err = eachNode(nodes, func(j int, n Node) error {
		ok, err := n.VerifyLVCCHash(ee, vcs, vcID, hashed)
		if err != nil {
			return err
		}
		if !ok {
			return returncodes.ProofFailuref("hashed long Vote Cast Return Code shares of card %s are not allowed", vcID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}
