// internal/engine/errors.go
package engine

import "errors"

// Sentinel errors surfaced by engine operations. The HTTP boundary maps these
// onto status codes with errors.Is.
var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchFinished   = errors.New("match already finished")
	ErrInvalidPlayers  = errors.New("match requires two distinct non-empty player ids")
	ErrNotParticipant  = errors.New("player is not part of this match")
	ErrInvalidCard     = errors.New("invalid card or player")
	ErrCardUsed        = errors.New("card already used")
	ErrAlreadyMoved    = errors.New("player already moved this round")
	ErrIndexOutOfRange = errors.New("card index out of range")
	ErrBadSelector     = errors.New("move must select a card by id or by index")
)
