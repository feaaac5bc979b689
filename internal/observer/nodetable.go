package observer

import (
	"encoding/json"
	"sort"

	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/wire"
)

// NodeTable is a gateway's committed node id -> hardware address mapping.
type NodeTable map[wire.NodeID]wire.LongAddress

type nodeTableEntry struct {
	NodeID      wire.NodeID      `json:"node_id"`
	LongAddress wire.LongAddress `json:"long_address"`
}

// MarshalJSON renders the table as an array of {node_id, long_address}
// entries, sorted by node id, rather than a JSON object (node ids are
// numeric, and this matches the array-of-entries shape used elsewhere for
// wire-originated maps).
func (t NodeTable) MarshalJSON() ([]byte, error) {
	ids := make([]wire.NodeID, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]nodeTableEntry, len(ids))
	for i, id := range ids {
		entries[i] = nodeTableEntry{NodeID: id, LongAddress: t[id]}
	}
	return json.Marshal(entries)
}

// nodeTableBuilder accumulates node table pages for one gateway into a
// complete table, committing once a terminator (empty) page arrives.
//
// A gateway walks its table by repeatedly requesting NODE_TABLE_REQUEST
// starting at the address just past the last entry it has seen; this
// builder only trusts a page when its start address matches what it
// expects next, and resets otherwise.
type nodeTableBuilder struct {
	expectedNext *wire.NodeID
	table        NodeTable
}

// push folds one page into the builder. It returns the committed table and
// true if this page was the walk's terminator (an empty page at the
// expected address); otherwise it returns (nil, false).
func (b *nodeTableBuilder) push(startAddress wire.NodeAddress, entries []pvapp.NodeTableResponseEntry) (NodeTable, bool) {
	expected := wire.ZeroAddress
	if b.expectedNext != nil {
		expected = b.expectedNext.Address()
	}
	if expected != startAddress {
		b.expectedNext = nil
		b.table = nil
		if startAddress != wire.ZeroAddress {
			// Mid-table, but not at a boundary we recognize; ignore.
			return nil, false
		}
	}
	if b.table == nil {
		b.table = make(NodeTable, len(entries))
	}

	for _, e := range entries {
		nodeID, err := wire.NewNodeID(e.NodeAddress)
		if err != nil {
			b.expectedNext = nil
			b.table = nil
			return nil, false
		}
		b.table[nodeID] = e.LongAddress
	}

	if len(entries) == 0 {
		table := b.table
		b.table = nil
		b.expectedNext = nil
		return table, true
	}

	var max wire.NodeID
	for id := range b.table {
		if id > max {
			max = id
		}
	}
	next, overflow := max.Next()
	if overflow {
		b.table = nil
		b.expectedNext = nil
	} else {
		b.expectedNext = &next
	}
	return nil, false
}
