package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitDone(t *testing.T, o *Orchestrator, id string) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := o.GetJob(id).Snapshot(); snap.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	ix, s := newTestIndexer(t, nil)
	o := NewOrchestrator(OrchestratorConfig{Workers: 2, QueueSize: 4}, ix, quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	good := NewJob("guide.md", "", nil, []byte(guideMD))
	bad := NewJob("blank.txt", "", nil, []byte("\n"))
	for _, j := range []*Job{good, bad} {
		if err := o.Submit(j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	snap := waitDone(t, o, good.ID)
	if snap.Status != StatusCompleted || snap.DocID == "" || snap.Progress.Nodes != 3 {
		t.Errorf("unexpected good job state: %+v", snap)
	}
	if good.FileData() != nil {
		t.Error("expected file data released after processing")
	}
	rec, err := s.Load(context.Background(), snap.DocID)
	if err != nil || rec == nil {
		t.Errorf("expected stored record, got %v %v", rec, err)
	}

	snap = waitDone(t, o, bad.ID)
	if snap.Status != StatusFailed || snap.Phase != string(StatusAssembling) || len(snap.Progress.Errors) != 1 {
		t.Errorf("unexpected failed job state: %+v", snap)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	ix, _ := newTestIndexer(t, nil)
	// Not started: nothing drains the queue.
	o := NewOrchestrator(OrchestratorConfig{Workers: 1, QueueSize: 1}, ix, quietLogger())

	first := NewJob("a.md", "", nil, []byte("# A\n"))
	if err := o.Submit(first); err != nil {
		t.Fatalf("submit: %v", err)
	}
	second := NewJob("b.md", "", nil, []byte("# B\n"))
	if err := o.Submit(second); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if snap := o.GetJob(second.ID).Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected rejected job tracked as failed, got %q", snap.Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	o.Stop()
	o.Stop()
	if err := o.Submit(NewJob("c.md", "", nil, nil)); err == nil {
		t.Error("expected submit after stop to fail")
	}
}
