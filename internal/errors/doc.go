// Package errors provides a comprehensive error handling solution for the encounter-api project.
//
// This package is inspired by the goaterr pattern and provides:
//   - Structured errors with codes, messages, and metadata
//   - User-friendly error messages
//   - Error context preservation through wrapping
//   - Validation error helpers
//   - Type-safe error checking
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.NotFound("encounter not found")
//	err := errors.InvalidArgumentf("invalid spell slot level: %d", level)
//
// Adding metadata:
//
//	err := errors.NotFound("encounter not found").
//	    WithMeta("encounter_id", encID).
//	    WithMeta("participant_id", participantID)
//
// Wrapping errors:
//
//	if err := repo.Get(id); err != nil {
//	    return errors.Wrap(err, "failed to get encounter")
//	}
//
// Changing error semantics:
//
//	if err := db.Query(); err != nil {
//	    if isNotFound(err) {
//	        return errors.WrapWithCode(err, errors.CodeNotFound, "encounter not found")
//	    }
//	    return errors.Wrap(err, "database error")
//	}
//
// # Error Checking
//
// Type checking:
//
//	if errors.IsNotFound(err) {
//	    // Handle not found case
//	}
//
// Extracting information:
//
//	code := errors.GetCode(err)
//	message := errors.GetMessage(err)
//	meta := errors.GetMeta(err)
//
// # Validation Errors
//
// Using the validation builder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", input.Name, vb)
//	errors.ValidateRange("level", input.Level, 1, 20, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// # Layer-Specific Guidelines
//
// Repository layer:
//   - Return domain-specific errors (NotFound, AlreadyExists)
//   - Include relevant IDs in metadata
//   - Wrap database errors with context
//
// Orchestrator layer:
//   - Validate inputs and return InvalidArgument errors
//   - Check turn legality and reaction preconditions, returning
//     FailedPrecondition errors that leave encounter state unchanged
//   - Wrap repository errors with business context
//
// Rules/engine layer:
//   - Soft ineligibility (a participant that simply cannot react) is not
//     an error at all; no opportunity is produced
//   - Unrecognized action or reaction types are Internal errors: fail
//     fast, never silently drop
//
// # Error Codes
//
// The following error codes are available:
//   - NotFound: Resource not found
//   - InvalidArgument: Invalid input provided
//   - AlreadyExists: Resource already exists
//   - PermissionDenied: Insufficient permissions
//   - Internal: Internal server error
//   - Unavailable: Service temporarily unavailable
//   - Unauthenticated: Authentication required
//   - ResourceExhausted: Rate limit or quota exceeded
//   - FailedPrecondition: Operation requirements not met
//   - Aborted: Operation aborted
//   - OutOfRange: Value out of valid range
//   - Unimplemented: Feature not implemented
//   - DataLoss: Unrecoverable data loss
//   - Canceled: Operation canceled
//   - DeadlineExceeded: Operation timeout
package errors
