// Package errors provides the structured error type used across rpg-narrator.
//
// Every layer returns *Error values built from a Code and a player-safe message:
//
//	return errors.NotFoundf("battle %s not found", id)
//
// Lower-level failures are wrapped so the code survives and the cause is kept for logs:
//
//	if err := r.client.Get(ctx, key).Err(); err != nil {
//	    return errors.Wrapf(err, "failed to load battle %s", id)
//	}
//
// Rejections that callers branch on carry a Reason (NotYourTurn, MatchFinished,
// AlreadyClaimed, ...). Handlers convert with ToGRPCError, which attaches the reason
// as a google.rpc.ErrorInfo detail; clients restore it with FromGRPCError.
//
// Config and request validation use ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("username", in.Username, vb)
//	return vb.Build()
package errors
