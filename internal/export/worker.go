package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"standcore/internal/blob"
	"standcore/pkg/domain"
)

// Status describes the lifecycle stage of an export request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures one stored table artifact.
type Artifact struct {
	Key         string    `json:"key"`
	Table       Table     `json:"table"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export request and its resulting artifacts.
type Record struct {
	ID          string     `json:"id"`
	RunID       string     `json:"run_id"`
	SiteID      string     `json:"site_id"`
	Tables      []Table    `json:"tables"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Input represents an enqueue request for the worker.
type Input struct {
	RunID       string
	Result      domain.SiteResult
	Tables      []Table
	Formats     []Format
	RequestedBy string
	Reason      string
}

// Scheduler queues export requests and exposes status.
type Scheduler interface {
	Enqueue(ctx context.Context, input Input) (Record, error)
	Get(id string) (Record, bool)
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for exports.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	RunID      string         `json:"run_id"`
	SiteID     string         `json:"site_id"`
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Worker executes exports asynchronously, one goroutine draining a bounded
// queue. Rendered artifacts land in the blob store under
// exports/<run-id>/<export-id>/<table>.<ext>.
type Worker struct {
	store blob.Store
	audit AuditLogger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id    string
	input Input
}

// NewWorker constructs an export worker over the given blob store.
func NewWorker(store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		store:  store,
		audit:  audit,
		queue:  make(chan task, 32),
		jobs:   make(map[string]*Record),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules an export job and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, input Input) (Record, error) {
	if w.store == nil {
		return Record{}, fmt.Errorf("export store not configured")
	}
	if strings.TrimSpace(input.RunID) == "" {
		return Record{}, fmt.Errorf("run id required")
	}

	tables := input.Tables
	if len(tables) == 0 {
		tables = AllTables()
	}
	uniqTables := make([]Table, 0, len(tables))
	seenTables := make(map[Table]struct{})
	for _, table := range tables {
		if _, duplicate := seenTables[table]; duplicate {
			continue
		}
		switch table {
		case TableIndividualYears, TablePlotYears, TableAnnualSeries, TableExceptions:
		default:
			return Record{}, fmt.Errorf("unknown export table %s", table)
		}
		uniqTables = append(uniqTables, table)
		seenTables[table] = struct{}{}
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniqFormats := make([]Format, 0, len(formats))
	seenFormats := make(map[Format]struct{})
	for _, format := range formats {
		if _, duplicate := seenFormats[format]; duplicate {
			continue
		}
		if format != FormatCSV && format != FormatJSON {
			return Record{}, fmt.Errorf("unsupported export format %s", format)
		}
		uniqFormats = append(uniqFormats, format)
		seenFormats[format] = struct{}{}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		RunID:       input.RunID,
		SiteID:      input.Result.SiteID,
		Tables:      uniqTables,
		Formats:     uniqFormats,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queuedSnapshot := record.copy()
	w.mu.Unlock()

	if w.audit != nil {
		w.audit.Record(ctx, AuditEntry{
			ID:         uuid.NewString(),
			Action:     "result_export",
			Actor:      input.RequestedBy,
			RunID:      input.RunID,
			SiteID:     input.Result.SiteID,
			Status:     StatusQueued,
			Reason:     input.Reason,
			OccurredAt: now,
		})
	}

	select {
	case w.queue <- task{id: id, input: input}:
	default:
		return Record{}, fmt.Errorf("export queue full")
	}

	return queuedSnapshot, nil
}

// Get returns a snapshot of the export record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(t task) {
	record, ok := w.Get(t.id)
	if !ok {
		return
	}

	w.updateStatus(t.id, StatusRunning, "")

	artifacts := make([]Artifact, 0, len(record.Tables)*len(record.Formats))
	for _, table := range record.Tables {
		for _, format := range record.Formats {
			payload, rows, err := renderTable(table, t.input.Result, format)
			if err != nil {
				w.fail(t.id, err.Error())
				return
			}
			key := fmt.Sprintf("exports/%s/%s/%s.%s", t.input.RunID, t.id, table, format.Extension())
			info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{
				ContentType: format.ContentType(),
				Metadata: map[string]string{
					"run_id": t.input.RunID,
					"table":  string(table),
				},
			})
			if err != nil {
				w.fail(t.id, fmt.Sprintf("store artifact %s: %v", key, err))
				return
			}
			url := info.URL
			if url == "" {
				if signed, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
					url = signed
				}
			}
			createdAt := info.LastModified
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			artifacts = append(artifacts, Artifact{
				Key:         key,
				Table:       table,
				Format:      format,
				ContentType: format.ContentType(),
				SizeBytes:   info.Size,
				Rows:        rows,
				URL:         url,
				CreatedAt:   createdAt,
			})
		}
	}

	w.complete(t.id, artifacts)
}

func (w *Worker) updateStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var runID, siteID, actor string
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
		runID, siteID, actor = record.RunID, record.SiteID, record.RequestedBy
	}
	w.mu.Unlock()
	if w.audit != nil {
		entry := AuditEntry{
			ID:         uuid.NewString(),
			Action:     "result_export",
			Actor:      actor,
			RunID:      runID,
			SiteID:     siteID,
			Status:     status,
			OccurredAt: now,
		}
		if message != "" {
			entry.Metadata = map[string]any{"note": message}
		}
		w.audit.Record(w.ctx, entry)
	}
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	var runID, siteID, actor string
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
		runID, siteID, actor = record.RunID, record.SiteID, record.RequestedBy
	}
	w.mu.Unlock()
	if w.audit != nil {
		w.audit.Record(w.ctx, AuditEntry{
			ID:         uuid.NewString(),
			Action:     "result_export",
			Actor:      actor,
			RunID:      runID,
			SiteID:     siteID,
			Status:     StatusSucceeded,
			Metadata:   map[string]any{"artifacts": len(artifacts)},
			OccurredAt: now,
		})
	}
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	var runID, siteID, actor string
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		runID, siteID, actor = record.RunID, record.SiteID, record.RequestedBy
	}
	w.mu.Unlock()
	if w.audit != nil {
		w.audit.Record(w.ctx, AuditEntry{
			ID:         uuid.NewString(),
			Action:     "result_export",
			Actor:      actor,
			RunID:      runID,
			SiteID:     siteID,
			Status:     StatusFailed,
			Metadata:   map[string]any{"error": reason},
			OccurredAt: now,
		})
	}
}

func (r Record) copy() Record {
	dup := r
	dup.Tables = append([]Table(nil), r.Tables...)
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	return dup
}

var _ Scheduler = (*Worker)(nil)

// MemoryAuditLog captures audit entries in memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a defensive copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
