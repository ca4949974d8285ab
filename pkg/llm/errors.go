package llm

import "errors"

// ErrRateLimited is returned (wrapped) by providers when the upstream
// rejects a request with a rate-limit response. Callers distinguish only
// "rate limited" vs everything else.
var ErrRateLimited = errors.New("llm: rate limited")
