package journal

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/deque"
)

type Entry struct {
	Operation string
	TenderID  string
	Actor     common.Address
	Amount    *big.Int // nil for non-monetary transitions
	Detail    string
	Timestamp time.Time
}

// Journal is a bounded in-memory log of successful state transitions. When it
// reaches capacity the oldest entry is overwritten. The implementation uses a
// ring buffer (deque) to avoid unnecessary allocations.
type Journal struct {
	mu   sync.Mutex
	data *deque.Deque[Entry]
	cap  int
}

func NewJournal(cap int) *Journal {
	return &Journal{
		data: deque.New[Entry](cap, cap),
		cap:  cap,
	}
}

func (j *Journal) Add(entry Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if j.data.Len() >= j.cap {
		j.data.PopFront()
	}
	j.data.PushBack(entry)
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.data.Len()
}

func (j *Journal) Range(f func(entry Entry) bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := 0; i < j.data.Len(); i++ {
		if !f(j.data.At(i)) {
			return
		}
	}
}

// ByTender returns the journal entries for a single tender, oldest first.
func (j *Journal) ByTender(tenderID string) []Entry {
	var res []Entry
	j.Range(func(entry Entry) bool {
		if entry.TenderID == tenderID {
			res = append(res, entry)
		}
		return true
	})
	return res
}
