// Package auth3p turns verified third-party identity assertions (Sign in
// with Apple, Google Identity) into local accounts and opaque bearer
// credentials.
//
// Flow:
//   - A vendor-signed identity token arrives on POST /login/:vendor or
//     POST /register/:vendor. An AssertionVerifier (JWKS-backed by default)
//     validates it and yields the vendor-scoped subject plus an optional
//     email.
//   - Login resolves the subject to an existing active User via
//     AccountResolver and mints a fresh bearer Token. Registration runs the
//     RegisterAccountHandler, which creates the User and its first Token in
//     one transaction; the unique vendor-subject columns close the
//     duplicate-registration race.
//   - Subsequent API calls present the opaque token value in an
//     Authorization: Bearer header. middleware/tokenware resolves it back to
//     the owning User without ever aborting the request; tokenware.Guard is
//     the piece that rejects unauthenticated access where it is required.
//
// Token values are random secrets stored verbatim; deleting the row revokes
// the credential. Bearer lookup intentionally skips the user's active flag,
// see TokenMinter.Lookup.
package auth3p
