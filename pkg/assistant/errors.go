package assistant

import "errors"

var (
	// ErrSubmissionPending rejects a second submission while one request is
	// outstanding. Submissions are single-flight per session.
	ErrSubmissionPending = errors.New("assistant: a submission is already pending")

	// ErrAnalysisInFlight rejects concurrent document uploads for the same
	// session.
	ErrAnalysisInFlight = errors.New("assistant: document analysis already in flight")

	// ErrNoUserTurn is returned by RegenerateLast when the session has no
	// user turn to replay.
	ErrNoUserTurn = errors.New("assistant: no user turn to regenerate")
)
