/*
Package campussdk is a Go client for the campus identity service.

# Client vs Session

Client covers the public endpoints: registration, login, pre-account
applications, health and JWKS. A successful login returns either a Session
directly or a Challenge that must be answered with a second factor code:

	c := campussdk.NewClient("https://campus.example.edu")

	res, err := c.Login(ctx, "jane@example.edu", "password")
	if err != nil {
		return err
	}
	sess := res.Session
	if res.Challenge != nil {
		sess, err = c.VerifyChallenge(ctx, res.Challenge.PendingToken, code)
	}

A Session carries the bearer token and exposes the profile, two-factor,
role request and reviewer endpoints.

# Errors

Non-2xx responses are returned as *APIError carrying the HTTP status, the
stable error code and a description.
*/
package campussdk
