package domain

import "errors"

// ErrInvalidInput marks malformed input rejected at the orchestrator
// boundary before any stage runs. It is distinct from analysis
// degradation, which is signalled through StageResult origins.
var ErrInvalidInput = errors.New("invalid article input")

// ErrContentTooLarge is returned when article content exceeds the hard
// size cap.
var ErrContentTooLarge = errors.New("article content too large")

// ErrModelUnavailable signals that a stage could execute neither its
// primary nor its fallback path.
var ErrModelUnavailable = errors.New("model unavailable")

// ErrQuotaExceeded is returned by remote clients when the shared rate
// limiter denies a call; the caller falls back instead of queueing.
var ErrQuotaExceeded = errors.New("remote call quota exceeded")
