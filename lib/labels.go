package lib

// Domain-separation labels. Each is the first value of the recursive hash
// or of the KDF info of one protocol step; changing any of them breaks
// interoperability with deployed nodes.
const (
	LabelGenVerDat                 = "GenVerDat"
	LabelCreateLVCCShare           = "CreateLVCCShare"
	LabelVerifyLVCCHash            = "VerifyLVCCHash"
	LabelLongChoiceReturnCode      = "LongChoiceReturnCode"
	LabelLongVoteCastReturnCode    = "LongVoteCastReturnCode"
	LabelVoterChoiceGeneration     = "VoterChoiceReturnCodeGeneration"
	LabelVoterVoteCastGeneration   = "VoterVoteCastReturnCodeGeneration"
	LabelCreateVote                = "CreateVote"
	LabelPartialDecryptPCC         = "PartialDecryptPCC"
	LabelCreateLCCShare            = "CreateLCCShare"
	LabelGenEncLongCodeShares      = "GenEncLongCodeShares"
	LabelEncryptedHashedConfirmKey = "EncryptedHashedConfirmationKey"
)
