package lib

import (
	"go.dedis.ch/returncodes"
)

// ElectionParameters are the size constants of an election event. They are
// part of the wire format: every vector is checked against them.
type ElectionParameters struct {
	// Omega is the maximum number of voting options of a ballot.
	Omega int
	// Phi is the maximum number of selectable voting options of a ballot.
	Phi int
	// Delta is the message length of the vote ciphertexts.
	Delta int
}

// Validate checks that the parameters are positive and consistent.
func (p ElectionParameters) Validate() error {
	if p.Omega <= 0 || p.Phi <= 0 || p.Delta <= 0 {
		return returncodes.Validationf("election parameters must be positive, got omega=%d phi=%d delta=%d",
			p.Omega, p.Phi, p.Delta)
	}
	if p.Phi > p.Omega {
		return returncodes.Validationf("phi (%d) must not exceed omega (%d)", p.Phi, p.Omega)
	}
	return nil
}

// Question is the correctness information of one question of a ballot.
type Question struct {
	CorrectnessID         string
	NumberOfSelections    int
	NumberOfVotingOptions int
}

// CombinedCorrectnessInformation describes the questions of a ballot in
// order. Voting options are numbered across questions, and so are
// selections.
type CombinedCorrectnessInformation struct {
	questions []Question
}

// NewCombinedCorrectnessInformation validates the questions.
func NewCombinedCorrectnessInformation(questions ...Question) (*CombinedCorrectnessInformation, error) {
	if len(questions) == 0 {
		return nil, returncodes.Validationf("correctness information needs at least one question")
	}
	seen := make(map[string]bool)
	for _, q := range questions {
		if q.CorrectnessID == "" {
			return nil, returncodes.Validationf("correctness id must not be empty")
		}
		if seen[q.CorrectnessID] {
			return nil, returncodes.Validationf("correctness id %s is used twice", q.CorrectnessID)
		}
		seen[q.CorrectnessID] = true
		if q.NumberOfSelections <= 0 || q.NumberOfSelections > q.NumberOfVotingOptions {
			return nil, returncodes.Validationf("question %s selects %d of %d options",
				q.CorrectnessID, q.NumberOfSelections, q.NumberOfVotingOptions)
		}
	}
	return &CombinedCorrectnessInformation{questions: append([]Question(nil), questions...)}, nil
}

// Questions returns a copy of the questions.
func (c *CombinedCorrectnessInformation) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// TotalNumberOfSelections returns psi, the number of selections of the
// ballot.
func (c *CombinedCorrectnessInformation) TotalNumberOfSelections() int {
	psi := 0
	for _, q := range c.questions {
		psi += q.NumberOfSelections
	}
	return psi
}

// TotalNumberOfVotingOptions returns n, the number of voting options of the
// ballot.
func (c *CombinedCorrectnessInformation) TotalNumberOfVotingOptions() int {
	n := 0
	for _, q := range c.questions {
		n += q.NumberOfVotingOptions
	}
	return n
}

// CorrectnessIDsByOption returns the correctness id of every voting option.
func (c *CombinedCorrectnessInformation) CorrectnessIDsByOption() []string {
	var ids []string
	for _, q := range c.questions {
		for i := 0; i < q.NumberOfVotingOptions; i++ {
			ids = append(ids, q.CorrectnessID)
		}
	}
	return ids
}

// CorrectnessIDsBySelection returns the correctness id of every selection.
func (c *CombinedCorrectnessInformation) CorrectnessIDsBySelection() []string {
	var ids []string
	for _, q := range c.questions {
		for i := 0; i < q.NumberOfSelections; i++ {
			ids = append(ids, q.CorrectnessID)
		}
	}
	return ids
}

// Validate checks the correctness information against the election
// parameters.
func (c *CombinedCorrectnessInformation) Validate(params ElectionParameters) error {
	if n := c.TotalNumberOfVotingOptions(); n > params.Omega {
		return returncodes.Validationf("ballot has %d voting options, at most omega=%d are allowed", n, params.Omega)
	}
	if psi := c.TotalNumberOfSelections(); psi > params.Phi {
		return returncodes.Validationf("ballot has %d selections, at most phi=%d are allowed", psi, params.Phi)
	}
	return nil
}
