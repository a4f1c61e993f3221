package errors

// Reason narrows a Code for rejections a caller is expected to branch on.
// It travels in Meta under MetaReason and survives the gRPC round trip.
type Reason string

// MetaReason is the metadata key holding a Reason
const MetaReason = "reason"

// Battle, mail and session rejection reasons
const (
	ReasonNotYourTurn        Reason = "NOT_YOUR_TURN"
	ReasonMatchFinished      Reason = "MATCH_FINISHED"
	ReasonNotPending         Reason = "NOT_PENDING"
	ReasonInvalidTarget      Reason = "INVALID_TARGET"
	ReasonInsufficientEnergy Reason = "INSUFFICIENT_ENERGY"
	ReasonInvalidSkill       Reason = "INVALID_SKILL"
	ReasonAlreadyClaimed     Reason = "ALREADY_CLAIMED"
	ReasonBusy               Reason = "BUSY"
	ReasonDead               Reason = "CHARACTER_DEAD"
)

// WithReason tags the error with a rejection reason
func (e *Error) WithReason(r Reason) *Error {
	return e.WithMeta(MetaReason, string(r))
}

// NotYourTurn rejects an action submitted out of turn
func NotYourTurn(actor string) *Error {
	return FailedPreconditionf("it is not %s's turn", actor).WithReason(ReasonNotYourTurn)
}

// MatchFinished rejects a transition on a battle that is no longer in progress
func MatchFinished(battleID string) *Error {
	return FailedPreconditionf("battle %s is not in progress", battleID).WithReason(ReasonMatchFinished)
}

// NotPending rejects accept/decline on a battle that left PENDING
func NotPending(battleID string) *Error {
	return FailedPreconditionf("battle %s is not pending", battleID).WithReason(ReasonNotPending)
}

// InvalidTarget rejects a challenge against oneself or an occupied target
func InvalidTarget(message string) *Error {
	return InvalidArgument(message).WithReason(ReasonInvalidTarget)
}

// InsufficientEnergy rejects a skill the actor cannot pay for
func InsufficientEnergy(skill string, need, have int) *Error {
	return FailedPreconditionf("%s needs %d energy, have %d", skill, need, have).
		WithReason(ReasonInsufficientEnergy)
}

// InvalidSkill rejects a skill the actor has not equipped
func InvalidSkill(skill string) *Error {
	return InvalidArgumentf("skill %q is not equipped", skill).WithReason(ReasonInvalidSkill)
}

// AlreadyClaimed signals a repeated mail claim. Callers treat it as a no-op.
func AlreadyClaimed(mailID string) *Error {
	return FailedPreconditionf("mail %s already claimed", mailID).WithReason(ReasonAlreadyClaimed)
}

// Busy rejects a submission while another one is in flight
func Busy(message string) *Error {
	return ResourceExhausted(message).WithReason(ReasonBusy)
}

// Dead rejects gameplay for a character awaiting death acknowledgement
func Dead(username string) *Error {
	return FailedPreconditionf("character of %s is dead", username).WithReason(ReasonDead)
}

// GetReason extracts the rejection reason, empty if none
func GetReason(err error) Reason {
	meta := GetMeta(err)
	if meta == nil {
		return ""
	}
	if r, ok := meta[MetaReason].(string); ok {
		return Reason(r)
	}
	return ""
}

// HasReason checks the rejection reason of an error
func HasReason(err error, r Reason) bool {
	return GetReason(err) == r
}
