package tree

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/AI-multimodal/aimm-adapteres/labview"
)

// Memo caches parsed records by path and device mode, so building raw and
// normalized trees over the same directory reads each file once.
// Concurrent requests for the same key share one parse.
type Memo struct {
	mu     sync.Mutex
	done   map[string]memoResult
	flight singleflight.Group
}

type memoResult struct {
	rec *labview.Record
	err error
}

func memoKey(path string, noDevice bool) string {
	return strconv.FormatBool(noDevice) + "\x00" + path
}

// Parse returns the memoized record for path, calling parse on a miss.
func (m *Memo) Parse(path string, noDevice bool, parse func() (*labview.Record, error)) (*labview.Record, error) {
	key := memoKey(path, noDevice)

	m.mu.Lock()
	res, ok := m.done[key]
	m.mu.Unlock()
	if ok {
		return res.rec, res.err
	}

	v, _, _ := m.flight.Do(key, func() (interface{}, error) {
		rec, err := parse()
		res := memoResult{rec, err}
		m.mu.Lock()
		if m.done == nil {
			m.done = make(map[string]memoResult)
		}
		m.done[key] = res
		m.mu.Unlock()
		return res, nil
	})
	res = v.(memoResult)
	return res.rec, res.err
}

// Len returns the number of memoized parses.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.done)
}
