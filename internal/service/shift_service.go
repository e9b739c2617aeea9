package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/dto"
	"github.com/MILO-debug/POS/internal/gateway"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/repository"
)

// Writer is the slice of the durable write gateway services depend on.
type Writer interface {
	Write(ctx context.Context, action, collection string, payload interface{}, docID string) (gateway.Outcome, error)
}

// ConnProbe reports whether the remote store is reachable right now.
type ConnProbe interface {
	Online(ctx context.Context) bool
}

// TxRunner executes fn inside a remote multi-document transaction. A nil
// TxRunner runs fn directly, which keeps unit tests free of a live cluster.
type TxRunner interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func runTx(ctx context.Context, tx TxRunner, fn func(ctx context.Context) error) error {
	if tx == nil {
		return fn(ctx)
	}
	return tx.RunTransaction(ctx, fn)
}

// ErrNoOpenShift rejects ledger operations attempted without an open shift.
var ErrNoOpenShift = fmt.Errorf("%w: no open shift, start one first", apierror.ErrValidation)

// ── Shift service ────────────────────────────────────────────────────────────

type ShiftService interface {
	// Start opens a shift for cashierName (or the session's own name when
	// empty). It refuses to run offline.
	Start(ctx context.Context, sess Session, cashierName string) (*model.Shift, error)
	// End closes the shift, recomputing its income from the sale ledger.
	// An empty shiftID resolves the caller's active shift.
	End(ctx context.Context, sess Session, shiftID string) (*dto.EndShiftResponse, error)
	// ActiveFor resolves the shift the session's actions attach to: a
	// cashier's own open shift, or the latest open shift for an admin.
	ActiveFor(ctx context.Context, sess Session) (*model.Shift, error)
	Get(ctx context.Context, id string) (*model.Shift, error)
	List(ctx context.Context, cashierName string) ([]model.Shift, error)
}

type shiftService struct {
	shifts repository.ShiftRepository
	sales  repository.SaleRepository
	gw     Writer
	probe  ConnProbe
	tx     TxRunner
}

func NewShiftService(shifts repository.ShiftRepository, sales repository.SaleRepository, gw Writer, probe ConnProbe, tx TxRunner) ShiftService {
	return &shiftService{shifts: shifts, sales: sales, gw: gw, probe: probe, tx: tx}
}

func (s *shiftService) Start(ctx context.Context, sess Session, cashierName string) (*model.Shift, error) {
	name := cashierName
	if !sess.IsAdmin() || name == "" {
		name = sess.CashierName()
	}
	if name == "" {
		return nil, fmt.Errorf("%w: cashier name is required", apierror.ErrValidation)
	}

	// Opening a shift is the one write that must not be queued: the
	// per-cashier uniqueness check is only meaningful against the live store.
	if !s.probe.Online(ctx) {
		return nil, fmt.Errorf("%w: starting a shift", apierror.ErrOffline)
	}

	shift := &model.Shift{
		ID:            uuid.NewString(),
		CashierName:   name,
		StartTime:     time.Now().UTC(),
		Status:        model.ShiftOpen,
		TotalIncome:   decimal.Zero,
		SchemaVersion: model.ShiftSchemaVersion,
	}

	// The count gives a clean error for the common retry; the unique index
	// on open shifts catches the concurrent race the snapshot count misses.
	err := runTx(ctx, s.tx, func(ctx context.Context) error {
		open, err := s.shifts.CountOpenByCashier(ctx, name)
		if err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: %s already has an open shift", apierror.ErrInvariant, name)
		}
		return s.shifts.Create(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("shift_id", shift.ID).Str("cashier", name).Msg("shift started")
	return shift, nil
}

func (s *shiftService) End(ctx context.Context, sess Session, shiftID string) (*dto.EndShiftResponse, error) {
	var shift *model.Shift
	var err error
	if shiftID != "" {
		shift, err = s.shifts.FindByID(ctx, shiftID)
	} else {
		shift, err = s.ActiveFor(ctx, sess)
	}
	if err != nil {
		return nil, err
	}
	if !shift.IsOpen() {
		return nil, fmt.Errorf("%w: shift %s is already closed", apierror.ErrValidation, shift.ID)
	}
	if !sess.IsAdmin() && shift.CashierName != sess.CashierName() {
		return nil, fmt.Errorf("%w: shift belongs to another cashier", apierror.ErrValidation)
	}

	// The running counter may have drifted (best-effort increments, offline
	// replays), so the closing figure is re-summed from the sale ledger.
	income, err := s.sales.SumTotalByShift(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fields := bson.M{
		"status":        model.ShiftClosed,
		"endTime":       now,
		"totalIncome":   income,
		"schemaVersion": model.ShiftSchemaVersion,
	}
	if _, err := s.gw.Write(ctx, model.WriteUpdate, infra.ColShifts, fields, shift.ID); err != nil {
		return nil, err
	}

	shift.Status = model.ShiftClosed
	shift.EndTime = &now
	shift.TotalIncome = income
	log.Info().Str("shift_id", shift.ID).Str("total_income", income.String()).Msg("shift ended")
	return &dto.EndShiftResponse{Shift: *shift, TotalIncome: income}, nil
}

func (s *shiftService) ActiveFor(ctx context.Context, sess Session) (*model.Shift, error) {
	var shift *model.Shift
	var err error
	if sess.IsAdmin() {
		shift, err = s.shifts.FindLatestOpen(ctx)
	} else {
		shift, err = s.shifts.FindOpenByCashier(ctx, sess.CashierName())
	}
	if err != nil {
		if apierror.IsNotFound(err) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) Get(ctx context.Context, id string) (*model.Shift, error) {
	return s.shifts.FindByID(ctx, id)
}

func (s *shiftService) List(ctx context.Context, cashierName string) ([]model.Shift, error) {
	return s.shifts.List(ctx, cashierName)
}
