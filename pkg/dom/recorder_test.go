package dom

import (
	"encoding/json"
	"testing"
)

func TestRecorderCountsAndFlush(t *testing.T) {
	m := NewMemory()
	r := NewRecorder(m)

	var batches [][]Op
	r.Subscribe(func(ops []Op) { batches = append(batches, ops) })

	div := r.CreateElement("div")
	r.SetAttribute(div, "class", "a")
	r.InsertChild(m.Body(), div, nil)

	if got := r.Count(OpSetAttr); got != 1 {
		t.Errorf("Count(SetAttr) = %d, want 1", got)
	}
	if got := r.Total(); got != 3 {
		t.Errorf("Total = %d, want 3", got)
	}

	r.Flush()
	r.Flush()
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1 (empty flushes are not delivered)", len(batches))
	}
	if got := batches[0][2]; got.Kind != OpInsert || got.Parent != m.Body().NodeID() || got.Node != div.NodeID() {
		t.Errorf("insert op = %+v", got)
	}
	if len(r.Pending()) != 0 {
		t.Error("pending should be empty after flush")
	}
	if got := r.Count(OpCreateElement); got != 1 {
		t.Errorf("counts survive flush, got %d", got)
	}

	r.Reset()
	if r.Total() != 0 {
		t.Error("Reset should clear counters")
	}
}

func TestOpJSONUsesNames(t *testing.T) {
	b, err := json.Marshal(Op{Kind: OpSetText, Node: 4, Value: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"op":"set_text","node":4,"value":"x"}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}

	var op Op
	if err := json.Unmarshal(b, &op); err != nil {
		t.Fatal(err)
	}
	if op.Kind != OpSetText {
		t.Errorf("Kind = %v", op.Kind)
	}
}
