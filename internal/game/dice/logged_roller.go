package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so that every roll leaves an audit
// trail at debug level: die count, sides, individual dice, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn satisfies Source so the Roller can be passed anywhere a raw
// Source is accepted. Single-value draws are not logged; callers that
// need an audit trail use Roll, D100, or D10.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Roll throws count dice with the given sides and logs the result.
func (r *Roller) Roll(count, sides int) RollResult {
	result := Roll(count, sides, r.src)
	r.logger.Debug("dice roll",
		zap.Int("count", count),
		zap.Int("sides", sides),
		zap.Ints("dice", result.Dice),
		zap.Int("total", result.Total()),
	)
	return result
}

// D100 rolls a percentile die and logs the result.
func (r *Roller) D100() int {
	v := D100(r.src)
	r.logger.Debug("dice roll", zap.Int("sides", 100), zap.Int("result", v))
	return v
}

// D10 rolls a d10 and logs the result.
func (r *Roller) D10() int {
	v := D10(r.src)
	r.logger.Debug("dice roll", zap.Int("sides", 10), zap.Int("result", v))
	return v
}
