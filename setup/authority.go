package setup

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Node is a control component as seen by the setup authority. *ccr.Node
// implements it in-process; the service package implements it over the
// network.
type Node interface {
	GenKeys(ee string, params lib.ElectionParameters) (group.GqVector, error)
	GenEncLongCodeShares(ee, vcs string, cards []lib.CardSetupData) ([]lib.EncLongCodeShare, error)
	UploadCardSet(cs *ccr.CardSet) error
}

// Authority runs the configuration of a verification card set against the
// four nodes. Nodes[j] is the node with id j+1.
type Authority struct {
	Group *group.GqGroup
	Nodes []Node
	// ChunkSize is the number of cards per request to the nodes.
	ChunkSize int
	// Rand is used for the setup keys and the verification data. A nil Rand
	// uses a fresh random stream.
	Rand cipher.Stream
	// Codes draws the short codes, see GenCMTableInput.
	Codes lib.CodeSource
}

// Election describes the card set to configure.
type Election struct {
	ElectionEventID       string
	VerificationCardSetID string
	Params                lib.ElectionParameters
	Correctness           *lib.CombinedCorrectnessInformation
	EncodedVotingOptions  group.GqVector
	ElectionPublicKey     group.GqVector
	EligibleVoters        int
	// SkipKeyGeneration reuses the keys the nodes already hold for the
	// election event, for a second card set of the same event.
	SkipKeyGeneration bool
}

// Configuration is the result of Configure.
type Configuration struct {
	Context  lib.SetupContext
	SetupKey *elgamal.KeyPair
	// CCRKey is the combined CCR Choice Return Codes encryption public key.
	CCRKey group.GqVector
	Data   *VerificationData
	Codes  *CombinedCodes
	Table  *CMTable
}

// NodeKeys is implemented by nodes that return their public key for an
// election event whose keys already exist.
type NodeKeys interface {
	PublicKey(ee string) (group.GqVector, error)
}

// Configure runs the whole configuration of a card set: key generation,
// verification data, the nodes' contributions, their combination, the
// mapping table and the upload of the card set to every node.
func (a *Authority) Configure(e *Election) (*Configuration, error) {
	if len(a.Nodes) != returncodes.NumberOfNodes {
		return nil, returncodes.Validationf("expected %d nodes, got %d", returncodes.NumberOfNodes, len(a.Nodes))
	}
	ctx, err := lib.NewSetupContext(e.ElectionEventID, e.VerificationCardSetID, a.Group)
	if err != nil {
		return nil, err
	}
	rand := a.Rand
	if rand == nil {
		rand = random.New()
	}
	rand = lib.LockedStream(rand)

	setupKey, err := GenSetupEncryptionKeys(rand, a.Group, e.Params)
	if err != nil {
		return nil, err
	}
	ccrKey, err := a.nodeKeys(e)
	if err != nil {
		return nil, err
	}
	log.Lvl2("Combined the CCR public keys of", len(a.Nodes), "nodes")

	data, err := GenVerDat(rand, &GenVerDatInput{
		Context:              ctx,
		Params:               e.Params,
		EligibleVoters:       e.EligibleVoters,
		EncodedVotingOptions: e.EncodedVotingOptions,
		Correctness:          e.Correctness,
		SetupPublicKey:       setupKey.Public(),
	})
	if err != nil {
		return nil, err
	}
	cards := data.Cards()
	expPCC, expCK, err := a.collectShares(ctx, cards)
	if err != nil {
		return nil, err
	}
	vcIDs := make([]string, len(cards))
	for i, c := range cards {
		vcIDs[i] = c.VerificationCardID
	}
	codes, err := CombineEncLongCodeShares(ctx, setupKey, expPCC, expCK, vcIDs)
	if err != nil {
		return nil, err
	}
	table, err := GenCMTable(ctx, &GenCMTableInput{
		SetupKey:                      setupKey,
		VerificationCardIDs:           vcIDs,
		EncryptedPreChoiceReturnCodes: codes.EncryptedPreChoiceReturnCodes,
		PreVoteCastReturnCodes:        codes.PreVoteCastReturnCodes,
		Correctness:                   e.Correctness,
		Codes:                         a.Codes,
	})
	if err != nil {
		return nil, err
	}

	cs := &ccr.CardSet{
		ElectionEventID:       e.ElectionEventID,
		VerificationCardSetID: e.VerificationCardSetID,
		Params:                e.Params,
		Correctness:           e.Correctness,
		AllowList:             data.AllowList,
		LVCCAllowList:         codes.LVCCAllowList,
		ElectionPublicKey:     e.ElectionPublicKey,
		CCRKey:                ccrKey,
	}
	if err := a.eachNode(func(j int, n Node) error {
		return n.UploadCardSet(cs)
	}); err != nil {
		return nil, xerrors.Errorf("uploading card set: %w", err)
	}
	log.Lvlf1("Configured card set %s with %d voters", e.VerificationCardSetID, len(cards))
	return &Configuration{
		Context:  ctx,
		SetupKey: setupKey,
		CCRKey:   ccrKey,
		Data:     data,
		Codes:    codes,
		Table:    table,
	}, nil
}

func (a *Authority) nodeKeys(e *Election) (group.GqVector, error) {
	keys := make([]group.GqVector, len(a.Nodes))
	err := a.eachNode(func(j int, n Node) error {
		var err error
		if e.SkipKeyGeneration {
			nk, ok := n.(NodeKeys)
			if !ok {
				return returncodes.ProtocolStatef("node %d cannot return existing keys", j+1)
			}
			keys[j], err = nk.PublicKey(e.ElectionEventID)
		} else {
			keys[j], err = n.GenKeys(e.ElectionEventID, e.Params)
		}
		return err
	})
	if err != nil {
		return group.GqVector{}, err
	}
	return GenVerCardSetKeys(e.Params, keys)
}

// collectShares sends the cards chunk by chunk to every node, verifies the
// contributions and returns them as N x 4 matrices.
func (a *Authority) collectShares(ctx lib.SetupContext, cards []lib.CardSetupData) (elgamal.CiphertextMatrix,
	elgamal.CiphertextMatrix, error) {
	pccRows := make([][]elgamal.Ciphertext, len(cards))
	ckRows := make([][]elgamal.Ciphertext, len(cards))
	for i := range cards {
		pccRows[i] = make([]elgamal.Ciphertext, len(a.Nodes))
		ckRows[i] = make([]elgamal.Ciphertext, len(a.Nodes))
	}
	for _, chunk := range lib.Chunks(len(cards), a.ChunkSize) {
		part := cards[chunk.From:chunk.To]
		err := a.eachNode(func(j int, n Node) error {
			shares, err := n.GenEncLongCodeShares(ctx.ElectionEventID, ctx.VerificationCardSetID, part)
			if err != nil {
				return err
			}
			if err := VerifyEncLongCodeShares(ctx, j+1, part, shares); err != nil {
				return err
			}
			for i, s := range shares {
				pccRows[chunk.From+i][j] = s.ExpPCC
				ckRows[chunk.From+i][j] = s.ExpCK
			}
			return nil
		})
		if err != nil {
			return elgamal.CiphertextMatrix{}, elgamal.CiphertextMatrix{}, xerrors.Errorf("chunk %d: %w", chunk.Index, err)
		}
		log.Lvlf3("Collected chunk %d of card set %s", chunk.Index, ctx.VerificationCardSetID)
	}
	expPCC, err := group.NewMatrix(pccRows)
	if err != nil {
		return elgamal.CiphertextMatrix{}, elgamal.CiphertextMatrix{}, err
	}
	expCK, err := group.NewMatrix(ckRows)
	if err != nil {
		return elgamal.CiphertextMatrix{}, elgamal.CiphertextMatrix{}, err
	}
	return expPCC, expCK, nil
}

// eachNode calls f on every node in parallel.
func (a *Authority) eachNode(f func(j int, n Node) error) error {
	var eg errgroup.Group
	for j, n := range a.Nodes {
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
