package storage_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neexbeast/tripweave/internal/itinerary"
)

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- mock Querier / BatchQuerier ----

type mockQuerier struct {
	queryRowFn  func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn     func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	sendBatchFn func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}
func (m *mockQuerier) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return m.sendBatchFn(ctx, b)
}

// ---- mock pgx.Row ----

type fakeRow struct {
	scanFn func(dest ...any) error
}

func (f *fakeRow) Scan(dest ...any) error { return f.scanFn(dest...) }

// ---- mock pgx.Rows ----

type fakeRows struct {
	scans  []func(dest ...any) error
	idx    int
	rowErr error
}

func (f *fakeRows) Next() bool                                   { f.idx++; return f.idx <= len(f.scans) }
func (f *fakeRows) Scan(dest ...any) error                       { return f.scans[f.idx-1](dest...) }
func (f *fakeRows) Err() error                                   { return f.rowErr }
func (f *fakeRows) Close()                                       {}
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

// ---- mock pgx.BatchResults ----

type fakeBatchResults struct {
	execErr error
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, f.execErr }
func (f *fakeBatchResults) Query() (pgx.Rows, error)         { return nil, nil }
func (f *fakeBatchResults) QueryRow() pgx.Row                { return nil }
func (f *fakeBatchResults) Close() error                     { return nil }

// ---- mock pgx.Tx ----

type mockTx struct {
	execSQL     []string
	batches     []*pgx.Batch
	queryRowFn  func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn     func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	batchResult pgx.BatchResults
	commitErr   error
	committed   bool
	rolledBack  bool
}

func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	if t.execFn != nil {
		return t.execFn(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (t *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.queryRowFn(ctx, sql, args...)
}

func (t *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if t.queryFn != nil {
		return t.queryFn(ctx, sql, args...)
	}
	return &fakeRows{}, nil
}

func (t *mockTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	t.batches = append(t.batches, b)
	if t.batchResult != nil {
		return t.batchResult
	}
	return &fakeBatchResults{}
}

func (t *mockTx) Commit(_ context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *mockTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

// pgx.Tx has many more methods; stub them out.
func (t *mockTx) Begin(_ context.Context) (pgx.Tx, error) { return nil, nil }
func (t *mockTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *mockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }
func (t *mockTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *mockTx) Conn() *pgx.Conn { return nil }

// ---- mock TxBeginner ----

type mockBeginner struct {
	tx       *mockTx
	beginErr error
	begun    int
}

func (m *mockBeginner) Begin(_ context.Context) (pgx.Tx, error) {
	m.begun++
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return m.tx, nil
}

// ---- scan helpers ----

// scanHeaderInto mirrors the header column order used by the store.
func scanHeaderInto(h itinerary.Itinerary) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*int64) = h.ID
		*dest[1].(*int64) = h.OwnerID
		*dest[2].(*string) = h.Title
		*dest[3].(*string) = h.Description
		*dest[4].(**string) = h.City
		*dest[5].(**time.Time) = h.StartDate
		*dest[6].(**time.Time) = h.EndDate
		*dest[7].(**float64) = h.Budget
		*dest[8].(*itinerary.Visibility) = h.Visibility
		*dest[9].(*itinerary.Status) = h.Status
		*dest[10].(**string) = h.Slug
		*dest[11].(**string) = h.CoverImage
		*dest[12].(*time.Time) = h.CreatedAt
		*dest[13].(*time.Time) = h.UpdatedAt
		return nil
	}
}

// scanItemInto mirrors the item column order used by the store.
func scanItemInto(it itinerary.Item) func(dest ...any) error {
	return func(dest ...any) error {
		var scenicID, hotelID, transportID *int64
		switch it.Type {
		case itinerary.TypeScenic:
			scenicID = it.RefID
		case itinerary.TypeHotel:
			hotelID = it.RefID
		case itinerary.TypeTransport:
			transportID = it.RefID
		}
		*dest[0].(*int64) = it.ID
		*dest[1].(*int64) = it.ItineraryID
		*dest[2].(*int) = it.DayNumber
		*dest[3].(*itinerary.ItemType) = it.Type
		*dest[4].(**int64) = scenicID
		*dest[5].(**int64) = hotelID
		*dest[6].(**int64) = transportID
		*dest[7].(*string) = it.Name
		*dest[8].(*string) = it.Image
		*dest[9].(*string) = it.Location
		*dest[10].(**string) = it.StartTime
		*dest[11].(**string) = it.EndTime
		*dest[12].(*string) = it.Notes
		*dest[13].(*int) = it.OrderNumber
		*dest[14].(**float64) = it.Price
		return nil
	}
}
