package model

import "errors"

var (
	ErrSourceUnreachable = errors.New("rate source unreachable")
	ErrMalformedSource   = errors.New("malformed rate source")
	ErrBoardNotFound     = errors.New("board not found")
	ErrCycleInProgress   = errors.New("refresh cycle already in progress")
)
