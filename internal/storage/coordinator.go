package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/master"
)

// Coordinator wraps header and full day-list writes in one atomic
// transaction. No optimistic locking: header updates are last-writer-wins,
// and a supplied day list always replaces the complete item set rather than
// diffing. Isolation rests on the database's transaction isolation level.
type Coordinator struct {
	db      TxBeginner
	refMode itinerary.RefCheckMode
	log     *slog.Logger
}

// NewCoordinator constructs a Coordinator. refMode controls whether linked
// master-data ids are verified inside the write transaction.
func NewCoordinator(db TxBeginner, refMode itinerary.RefCheckMode, log *slog.Logger) *Coordinator {
	return &Coordinator{db: db, refMode: refMode, log: log}
}

func refKind(t itinerary.ItemType) master.Kind {
	switch t {
	case itinerary.TypeScenic:
		return master.KindScenic
	case itinerary.TypeHotel:
		return master.KindHotel
	default:
		return master.KindTransport
	}
}

// WriteItinerary upserts the header and, when days is non-nil, replaces the
// itinerary's full item set, all inside one transaction: no partial state
// (deleted-but-not-reinserted) is ever observable to other readers.
//
// Validation failures, including the publish precondition, surface as
// ValidationError with the transaction rolled back; store failures surface
// as TransactionError after rollback. The transaction ignores client
// cancellation: once begun it runs to commit or rollback on the validation
// outcome alone.
func (c *Coordinator) WriteItinerary(ctx context.Context, hdr itinerary.Itinerary, days *[]itinerary.DayGroup) (*itinerary.Itinerary, []itinerary.Notice, error) {
	ctx = context.WithoutCancel(ctx)

	if err := itinerary.CheckPublishable(hdr); err != nil {
		return nil, nil, err
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, nil, itinerary.Transactional("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	headers := NewItineraryStore(tx)

	var written *itinerary.Itinerary
	if hdr.ID == 0 {
		written, err = headers.Insert(ctx, hdr)
	} else {
		written, err = headers.Update(ctx, hdr)
	}
	if err != nil {
		if errors.Is(err, itinerary.ErrNotFound) || errors.Is(err, itinerary.ErrConflict) {
			return nil, nil, err
		}
		return nil, nil, itinerary.Transactional("upsert header", err)
	}

	var notices []itinerary.Notice
	if days != nil {
		flat, flatNotices := itinerary.Flatten(written.ID, *days)
		notices = append(notices, flatNotices...)

		validated := make([]itinerary.Item, 0, len(flat))
		for _, it := range flat {
			v, itemNotices, err := itinerary.ValidateItem(it)
			if err != nil {
				return nil, nil, err
			}
			notices = append(notices, itemNotices...)
			validated = append(validated, v)
		}

		if c.refMode == itinerary.RefCheckStrict {
			if err := c.checkRefs(ctx, tx, validated); err != nil {
				return nil, nil, err
			}
		}

		items := NewItemStore(tx)
		if err := items.DeleteAllForItinerary(ctx, written.ID); err != nil {
			return nil, nil, itinerary.Transactional("clear items", err)
		}
		if err := items.BulkInsert(ctx, validated); err != nil {
			return nil, nil, itinerary.Transactional("insert items", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, itinerary.Transactional("commit", err)
	}

	c.log.Info("itinerary written",
		"itinerary_id", written.ID, "owner_id", written.OwnerID,
		"replaced_items", days != nil, "notices", len(notices))

	return written, notices, nil
}

// checkRefs verifies every linked master id inside the transaction. A
// missing row aborts the write; this is strict mode only.
func (c *Coordinator) checkRefs(ctx context.Context, tx pgx.Tx, items []itinerary.Item) error {
	md := NewMasterData(tx)
	for _, it := range items {
		if it.RefID == nil {
			continue
		}
		exists, err := md.Exists(ctx, refKind(it.Type), *it.RefID)
		if err != nil {
			return itinerary.Transactional("referential check", err)
		}
		if !exists {
			return itinerary.Validation("ref_id",
				fmt.Sprintf("%s %d does not exist", it.Type, *it.RefID))
		}
	}
	return nil
}
