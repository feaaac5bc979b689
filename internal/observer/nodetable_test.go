package observer

import (
	"testing"

	"github.com/gridwatch/meshtap/internal/pvapp"
	"github.com/gridwatch/meshtap/internal/wire"
)

func entry(nodeAddr uint16, addr byte) pvapp.NodeTableResponseEntry {
	var long wire.LongAddress
	long[7] = addr
	return pvapp.NodeTableResponseEntry{LongAddress: long, NodeAddress: wire.NodeAddress(nodeAddr)}
}

func TestNodeTableBuilderCommitsOnTerminatorPage(t *testing.T) {
	b := &nodeTableBuilder{}

	table, committed := b.push(0, []pvapp.NodeTableResponseEntry{entry(2, 0xA1), entry(3, 0xA2)})
	if committed {
		t.Fatalf("non-empty page should not commit, got table %+v", table)
	}

	table, committed = b.push(4, nil)
	if !committed {
		t.Fatal("empty page at the expected address should commit")
	}
	if len(table) != 2 || table[2] != entry(2, 0xA1).LongAddress || table[3] != entry(3, 0xA2).LongAddress {
		t.Errorf("got table %+v", table)
	}
}

func TestNodeTableBuilderResetsOnUnexpectedStart(t *testing.T) {
	b := &nodeTableBuilder{}
	b.push(0, []pvapp.NodeTableResponseEntry{entry(2, 0xA1)})

	// A page starting somewhere else entirely, and not at 0: ignored.
	table, committed := b.push(9, []pvapp.NodeTableResponseEntry{entry(9, 0xB1)})
	if committed || table != nil {
		t.Fatalf("got (%+v, %v), want (nil, false)", table, committed)
	}

	// Starting over from 0 should work cleanly.
	table, committed = b.push(0, nil)
	if !committed || len(table) != 0 {
		t.Fatalf("got (%+v, %v), want (empty table, true)", table, committed)
	}
}

func TestNodeTableBuilderAbortsOnZeroNodeID(t *testing.T) {
	b := &nodeTableBuilder{}
	_, committed := b.push(0, []pvapp.NodeTableResponseEntry{entry(0, 0xA1)})
	if committed {
		t.Fatal("expected no commit")
	}

	// The next page, even at address 0, is now treated as a fresh walk
	// since expectedNext was cleared by the abort.
	table, committed := b.push(0, nil)
	if !committed || len(table) != 0 {
		t.Fatalf("got (%+v, %v), want (empty table, true)", table, committed)
	}
}

func TestNodeTableMarshalJSON(t *testing.T) {
	table := NodeTable{
		3: entry(3, 0xA2).LongAddress,
		2: entry(2, 0xA1).LongAddress,
	}
	b, err := table.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[{"node_id":2,"long_address":[0,0,0,0,0,0,0,161]},{"node_id":3,"long_address":[0,0,0,0,0,0,0,162]}]`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}
