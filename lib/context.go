// Package lib holds the types and helpers shared by the setup authority
// and the control-component nodes: execution contexts, election
// parameters, correctness information, allow lists, the mapping table,
// hash labels and code generation.
package lib

import (
	"regexp"
	"strings"

	"github.com/pborman/uuid"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
)

var idPattern = regexp.MustCompile(`^[0-9A-F]{32}$`)

// GenerateID returns a new random identifier: 32 upper-case hexadecimal
// digits.
func GenerateID() string {
	return strings.ToUpper(strings.Replace(uuid.NewRandom().String(), "-", "", -1))
}

// ValidateID returns a validation error naming the identifier if id is not
// made of 32 upper-case hexadecimal digits.
func ValidateID(name, id string) error {
	if !idPattern.MatchString(id) {
		return returncodes.Validationf("%s must be 32 upper-case hexadecimal digits, got %q", name, id)
	}
	return nil
}

// SetupContext is the scope of a setup authority computation: one
// verification card set of one election event.
type SetupContext struct {
	ElectionEventID       string
	VerificationCardSetID string
	Group                 *group.GqGroup
}

// NewSetupContext validates the identifiers and the group.
func NewSetupContext(ee, vcs string, grp *group.GqGroup) (SetupContext, error) {
	ctx := SetupContext{ElectionEventID: ee, VerificationCardSetID: vcs, Group: grp}
	return ctx, ctx.Validate()
}

// Validate checks the identifiers and the group.
func (ctx SetupContext) Validate() error {
	if err := ValidateID("election event id", ctx.ElectionEventID); err != nil {
		return err
	}
	if err := ValidateID("verification card set id", ctx.VerificationCardSetID); err != nil {
		return err
	}
	if ctx.Group == nil {
		return returncodes.Validationf("context needs a group")
	}
	return nil
}

// CheckGroup returns a validation error if grp is not the group of the
// context.
func (ctx SetupContext) CheckGroup(name string, grp *group.GqGroup) error {
	if !ctx.Group.Equals(grp) {
		return returncodes.Validationf("%s must be in the group of the context", name)
	}
	return nil
}

// NodeContext is the scope of a computation by one control-component node.
type NodeContext struct {
	SetupContext
	NodeID int
}

// NewNodeContext validates the node id, the identifiers and the group.
func NewNodeContext(nodeID int, ee, vcs string, grp *group.GqGroup) (NodeContext, error) {
	ctx := NodeContext{SetupContext: SetupContext{ElectionEventID: ee, VerificationCardSetID: vcs, Group: grp},
		NodeID: nodeID}
	return ctx, ctx.Validate()
}

// Validate checks the node id on top of the setup context.
func (ctx NodeContext) Validate() error {
	if ctx.NodeID < 1 || ctx.NodeID > returncodes.NumberOfNodes {
		return returncodes.Validationf("node id must be in [1, %d], got %d", returncodes.NumberOfNodes, ctx.NodeID)
	}
	return ctx.SetupContext.Validate()
}
