package model

import "github.com/rotisserie/eris"

// ErrValidation marks a malformed DataPoint or RankingRecord. Callers can
// detect it with eris.Is and map it to a client error.
var ErrValidation = eris.New("validation failed")

// ErrArithmetic marks a computation that would divide by a zero primary
// value. Relative variance has no anchor in that case, so the engine fails
// fast instead of propagating NaN or Inf.
var ErrArithmetic = eris.New("arithmetic error")
