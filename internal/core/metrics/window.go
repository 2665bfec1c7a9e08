package metrics

import "github.com/dep2p/go-pathmgr/pkg/types"

// window 固定容量的尝试记录环形缓冲
//
// 成功计数随写入/淘汰增量维护。
type window struct {
	buf       []types.PunchAttemptRecord
	head      int // 下一个写入位置
	size      int
	successes int
}

func newWindow(capacity int) *window {
	return &window{buf: make([]types.PunchAttemptRecord, capacity)}
}

// push 写入记录，窗口已满时返回被淘汰的最旧记录
func (w *window) push(rec types.PunchAttemptRecord) (evicted types.PunchAttemptRecord, ok bool) {
	if w.size == len(w.buf) {
		evicted, ok = w.buf[w.head], true
		if evicted.Success {
			w.successes--
		}
	} else {
		w.size++
	}

	w.buf[w.head] = rec
	w.head = (w.head + 1) % len(w.buf)
	if rec.Success {
		w.successes++
	}
	return evicted, ok
}

// stats 返回窗口内的成功率统计
func (w *window) stats() types.SuccessStats {
	return types.SuccessStats{Samples: w.size, Successes: w.successes}
}

// records 返回窗口内记录，由旧到新
func (w *window) records() []types.PunchAttemptRecord {
	out := make([]types.PunchAttemptRecord, 0, w.size)
	start := (w.head - w.size + len(w.buf)) % len(w.buf)
	for i := 0; i < w.size; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}

// ewma 指数滑动平均
type ewma struct {
	alpha float64
	value float64
	n     int64
}

func (e *ewma) add(v float64) {
	if e.n == 0 {
		e.value = v
	} else {
		e.value = e.alpha*v + (1-e.alpha)*e.value
	}
	e.n++
}

func (e *ewma) snapshot() types.EWMA {
	return types.EWMA{Value: e.value, Samples: e.n}
}
