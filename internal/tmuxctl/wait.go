package tmuxctl

import (
	"hash/fnv"
	"regexp"
	"time"
)

// waitIdle polls capture until the content stops changing for opts.IdleTime.
// Returns false when opts.Timeout elapses first. A zero timeout waits
// forever. Content comparison uses a hash; the captures themselves are
// never retained.
func waitIdle(capture func() (string, error), opts WaitOptions) (bool, error) {
	if opts.IdleTime <= 0 {
		opts.IdleTime = DefaultIdleTime
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	start := time.Now()
	lastChange := start
	var lastHash uint64
	first := true

	for {
		if opts.Timeout > 0 && time.Since(start) > opts.Timeout {
			return false, nil
		}

		content, err := capture()
		if err != nil {
			return false, err
		}

		h := contentHash(content)
		if first || h != lastHash {
			lastHash = h
			lastChange = time.Now()
			first = false
		} else if time.Since(lastChange) >= opts.IdleTime {
			return true, nil
		}

		time.Sleep(opts.Interval)
	}
}

// waitFor polls capture until pattern matches or the timeout elapses.
func waitFor(capture func() (string, error), pattern *regexp.Regexp, opts WaitOptions) (bool, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	start := time.Now()
	for time.Since(start) < opts.Timeout {
		content, err := capture()
		if err != nil {
			return false, err
		}
		if pattern.MatchString(content) {
			return true, nil
		}
		time.Sleep(opts.Interval)
	}
	return false, nil
}

func contentHash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
