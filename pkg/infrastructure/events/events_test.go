package events

import (
	"errors"
	"testing"
)

func TestAppendAssignsStreamVersions(t *testing.T) {
	store := NewInMemoryEventStore()

	if err := store.Append(RunStream, NewAnalysisStartedEvent(3, 4, 2, 2, 3)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(RunStream, NewAnalysisCompletedEvent(0, 2, "15ms")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append("reliability", NewComponentCompletedEvent("reliability", 3)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	run, err := store.ReadStream(RunStream, 0)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(run) != 2 {
		t.Fatalf("got %d run events, want 2", len(run))
	}
	if run[0].Version() != 1 || run[1].Version() != 2 {
		t.Errorf("versions = %d, %d, want 1, 2", run[0].Version(), run[1].Version())
	}
	if run[0].Type() != AnalysisStartedEvent {
		t.Errorf("first event type = %s", run[0].Type())
	}

	// Versions are per stream, not global.
	comp, err := store.ReadStream("reliability", 1)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(comp) != 1 || comp[0].Version() != 1 {
		t.Fatalf("component stream = %+v", comp)
	}
}

func TestReadStreamFromVersion(t *testing.T) {
	store := NewInMemoryEventStore()
	for i := 0; i < 3; i++ {
		if err := store.Append(RunStream, NewAnalysisCompletedEvent(i, 0, "1ms")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	tail, err := store.ReadStream(RunStream, 3)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(tail) != 1 || tail[0].Version() != 3 {
		t.Errorf("tail = %+v, want single version-3 event", tail)
	}

	past, err := store.ReadStream(RunStream, 4)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("got %d events past the stream end, want 0", len(past))
	}

	missing, err := store.ReadStream("no-such-stream", 1)
	if err != nil {
		t.Fatalf("ReadStream: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("got %d events for an unknown stream, want 0", len(missing))
	}
}

func TestReadAllPreservesAppendOrder(t *testing.T) {
	store := NewInMemoryEventStore()
	if err := store.Append("a", NewComponentCompletedEvent("a", 1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append("b", NewComponentFailedEvent("b", errors.New("boom"))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append("a", NewComponentCompletedEvent("a", 2)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	all, err := store.ReadAll(0)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].StreamID() != "a" || all[1].StreamID() != "b" || all[2].StreamID() != "a" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].StreamID(), all[1].StreamID(), all[2].StreamID())
	}

	failed, ok := all[1].Data().(ComponentFailed)
	if !ok {
		t.Fatalf("data type = %T", all[1].Data())
	}
	if failed.Error != "boom" {
		t.Errorf("error = %q, want boom", failed.Error)
	}

	tail, err := store.ReadAll(2)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(tail) != 1 {
		t.Errorf("got %d tail events, want 1", len(tail))
	}
}
