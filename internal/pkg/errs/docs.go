// Package errs provides standardized error types for the routing pipeline.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// Two families of errors live here:
//
//   - Constructor/validation errors shared by the domain model
//     (ValueIsRequiredError, ValueIsInvalidError, ObjectNotFoundError)
//   - The pipeline failure taxonomy
//     (DataAccessError, ValidationError, ExternalToolError)
//
// Each error type follows the same pattern: a sentinel error variable for
// errors.Is classification, a struct type carrying details, constructor
// functions, an Error() method, and an Unwrap() method returning the
// sentinel.
//
// The taxonomy is deliberately small. DataAccessError means the store was
// unreachable or a query failed — never "zero rows". ValidationError means
// the input itself is unusable and a human must look at it.
// ExternalToolError is scoped to one compiler stage of one variant and
// carries a bounded tail of the tool's output.
package errs
