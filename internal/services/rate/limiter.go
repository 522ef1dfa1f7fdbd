package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type windowRule struct {
	suffix string
	window time.Duration
	max    int
}

// Limiter gates like actions with stacked fixed windows. A zero or
// negative limit disables the corresponding window.
type Limiter struct {
	store WindowStore
	rules []windowRule
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	rules := make([]windowRule, 0, 2)
	if perMinute > 0 {
		rules = append(rules, windowRule{suffix: "min", window: time.Minute, max: perMinute})
	}
	if per10Sec > 0 {
		rules = append(rules, windowRule{suffix: "10s", window: 10 * time.Second, max: per10Sec})
	}

	return &Limiter{
		store: store,
		rules: rules,
	}
}

// AllowLike consumes one slot in every window. When any window is over
// its limit it returns allowed=false and the longest retry-after in
// seconds.
func (l *Limiter) AllowLike(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, rule := range l.rules {
		count, ttl, err := l.store.IncrementWindow(ctx, likeKey(rule.suffix, userID), rule.window)
		if err != nil {
			return 0, false, err
		}
		if count > int64(rule.max) {
			if sec := ceilSeconds(ttl); sec > retryAfterSec {
				retryAfterSec = sec
			}
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func likeKey(suffix string, userID int64) string {
	return "rate:likes:" + suffix + ":" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
