package extraction

import "go.uber.org/zap"

// strategy is one heuristic of a cascade.
type strategy[T any] struct {
	name string
	run  func(*page) (T, bool)
}

// firstOf evaluates strategies in priority order and returns the first hit.
// A strategy that panics counts as a miss.
func firstOf[T any](logger *zap.Logger, p *page, strategies []strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := runStrategy(logger, p, s); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func runStrategy[T any](logger *zap.Logger, p *page, s strategy[T]) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("heuristic failed", zap.String("strategy", s.name), zap.Any("panic", r))
			var zero T
			v, ok = zero, false
		}
	}()
	return s.run(p)
}
