package journal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournalOverwritesOldest(t *testing.T) {
	j := NewJournal(4)

	for i := 0; i < 6; i++ {
		j.Add(Entry{Operation: fmt.Sprintf("op-%d", i), TenderID: "t1"})
	}

	require.Equal(t, 4, j.Len())

	var ops []string
	j.Range(func(entry Entry) bool {
		ops = append(ops, entry.Operation)
		return true
	})
	require.Equal(t, []string{"op-2", "op-3", "op-4", "op-5"}, ops)
}

func TestJournalByTender(t *testing.T) {
	j := NewJournal(16)
	j.Add(Entry{Operation: "submit_tender", TenderID: "t1"})
	j.Add(Entry{Operation: "submit_tender", TenderID: "t2"})
	j.Add(Entry{Operation: "approve_tender", TenderID: "t1"})

	entries := j.ByTender("t1")
	require.Len(t, entries, 2)
	require.Equal(t, "submit_tender", entries[0].Operation)
	require.Equal(t, "approve_tender", entries[1].Operation)
	require.False(t, entries[0].Timestamp.IsZero())
}
