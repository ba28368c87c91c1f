package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker processes a single document job.
type Worker struct {
	indexer *Indexer
	log     *slog.Logger
}

func NewWorker(indexer *Indexer, log *slog.Logger) *Worker {
	return &Worker{indexer: indexer, log: log}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer job.releaseFileData()

	var phase JobStatus = StatusQueued
	stage := func(s JobStatus) {
		phase = s
		job.SetStatus(s, string(s))
	}

	res, err := w.indexer.index(ctx, Request{
		Filename: job.Filename,
		Data:     job.FileData(),
		Title:    job.Title,
		Metadata: job.Metadata,
	}, stage)
	if err != nil {
		log.Error("ingest failed", "phase", phase, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, string(phase))
		return
	}

	job.SetDocID(res.DocID)
	job.SetCounts(res.Nodes, res.Summarized)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job complete", "doc_id", res.DocID, "nodes", res.Nodes, "summarized", res.Summarized)
}
