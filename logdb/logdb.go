// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vestry-labs/vestry/vestry"
)

const (
	insertVoteChangeQuery = "INSERT OR REPLACE INTO vote_change(blockNumber, eventIndex, fromAddr, toAddr, delegatee, negative, delta) VALUES (?, ?, ?, ?, ?, ?, ?)"
	insertGrantEventQuery = "INSERT OR REPLACE INTO grant_event(blockNumber, eventIndex, kind, recipient, counterparty, amount, extra) VALUES (?, ?, ?, ?, ?, ?, ?)"
)

// LogDB stores the events of engine operations for historical inspection.
type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// every connection to an in-memory db is a distinct db
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(voteChangeTableSchema + grantEventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// NewBatch starts a batch of events of block blockNum.
func (db *LogDB) NewBatch(blockNum uint32) *Batch {
	return &Batch{db: db.db, blockNum: blockNum}
}

func (db *LogDB) FilterVoteChanges(ctx context.Context, filter *VoteFilter) ([]*VoteChange, error) {
	if filter == nil {
		filter = &VoteFilter{}
	}
	metricsHandleQuery(filter.Options, filter.Order, "vote")

	var args []any
	stmt := "SELECT blockNumber, eventIndex, fromAddr, toAddr, delegatee, negative, delta FROM vote_change WHERE 1"
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes(), filter.Account.Bytes(), filter.Account.Bytes())
		stmt += " AND (delegatee = ? OR fromAddr = ? OR toAddr = ?)"
	}
	stmt, args = appendRange(stmt, args, filter.Range)
	stmt, args = appendOrder(stmt, args, filter.Order, filter.Options)

	prepared, err := db.stmtCache.Prepare(stmt)
	if err != nil {
		return nil, err
	}
	rows, err := prepared.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*VoteChange
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockNumber uint32
			index       uint32
			from        []byte
			to          []byte
			delegatee   []byte
			negative    bool
			delta       []byte
		)
		if err := rows.Scan(&blockNumber, &index, &from, &to, &delegatee, &negative, &delta); err != nil {
			return nil, err
		}
		d := new(big.Int).SetBytes(delta)
		if negative {
			d.Neg(d)
		}
		changes = append(changes, &VoteChange{
			BlockNumber: blockNumber,
			Index:       index,
			From:        vestry.BytesToAddress(from),
			To:          vestry.BytesToAddress(to),
			Delegatee:   vestry.BytesToAddress(delegatee),
			Delta:       d,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

func (db *LogDB) FilterGrantEvents(ctx context.Context, filter *GrantFilter) ([]*GrantEvent, error) {
	if filter == nil {
		filter = &GrantFilter{}
	}
	metricsHandleQuery(filter.Options, filter.Order, "grant")

	var args []any
	stmt := "SELECT blockNumber, eventIndex, kind, recipient, counterparty, amount, extra FROM grant_event WHERE 1"
	if filter.Recipient != nil {
		args = append(args, filter.Recipient.Bytes())
		stmt += " AND recipient = ?"
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		stmt += " AND kind = ?"
	}
	stmt, args = appendRange(stmt, args, filter.Range)
	stmt, args = appendOrder(stmt, args, filter.Order, filter.Options)

	prepared, err := db.stmtCache.Prepare(stmt)
	if err != nil {
		return nil, err
	}
	rows, err := prepared.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*GrantEvent
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			ev           GrantEvent
			kind         string
			recipient    []byte
			counterparty []byte
			amount       []byte
			extra        []byte
		)
		if err := rows.Scan(&ev.BlockNumber, &ev.Index, &kind, &recipient, &counterparty, &amount, &extra); err != nil {
			return nil, err
		}
		ev.Kind = GrantEventKind(kind)
		ev.Recipient = vestry.BytesToAddress(recipient)
		ev.Counterparty = vestry.BytesToAddress(counterparty)
		ev.Amount = new(big.Int).SetBytes(amount)
		ev.Extra = new(big.Int).SetBytes(extra)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func appendRange(stmt string, args []any, r *Range) (string, []any) {
	if r == nil {
		return stmt, args
	}
	args = append(args, r.From)
	stmt += " AND blockNumber >= ?"
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND blockNumber <= ?"
	}
	return stmt, args
}

func appendOrder(stmt string, args []any, order Order, options *Options) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY blockNumber DESC, eventIndex DESC"
	} else {
		stmt += " ORDER BY blockNumber ASC, eventIndex ASC"
	}
	if options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, options.Offset, options.Limit)
	}
	return stmt, args
}

// Batch collects the events of one block and writes them in one transaction.
type Batch struct {
	db          *sql.DB
	blockNum    uint32
	voteChanges []*VoteChange
	grantEvents []*GrantEvent
}

func (b *Batch) AddVoteChange(from, to, delegatee vestry.Address, delta *big.Int) *Batch {
	b.voteChanges = append(b.voteChanges, &VoteChange{
		BlockNumber: b.blockNum,
		From:        from,
		To:          to,
		Delegatee:   delegatee,
		Delta:       new(big.Int).Set(delta),
	})
	return b
}

func (b *Batch) AddGrantEvent(kind GrantEventKind, recipient, counterparty vestry.Address, amount, extra *big.Int) *Batch {
	if amount == nil {
		amount = new(big.Int)
	}
	if extra == nil {
		extra = new(big.Int)
	}
	b.grantEvents = append(b.grantEvents, &GrantEvent{
		BlockNumber:  b.blockNum,
		Kind:         kind,
		Recipient:    recipient,
		Counterparty: counterparty,
		Amount:       new(big.Int).Set(amount),
		Extra:        new(big.Int).Set(extra),
	})
	return b
}

func (b *Batch) BlockNumber() uint32 {
	return b.blockNum
}

// Len returns the count of buffered events.
func (b *Batch) Len() int {
	return len(b.voteChanges) + len(b.grantEvents)
}

// Commit writes the batch. Event indexes continue after the events already
// stored for the block.
func (b *Batch) Commit() error {
	if b.Len() == 0 {
		return nil
	}
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := b.write(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInsertCounter().AddWithLabel(int64(len(b.voteChanges)), map[string]string{"type": "vote"})
	metricInsertCounter().AddWithLabel(int64(len(b.grantEvents)), map[string]string{"type": "grant"})
	return nil
}

func (b *Batch) write(tx *sql.Tx) error {
	var next uint32
	if err := tx.QueryRow("SELECT COALESCE(MAX(eventIndex) + 1, 0) FROM vote_change WHERE blockNumber = ?", b.blockNum).Scan(&next); err != nil {
		return err
	}
	for _, c := range b.voteChanges {
		c.Index = next
		next++
		if _, err := tx.Exec(insertVoteChangeQuery,
			c.BlockNumber,
			c.Index,
			c.From.Bytes(),
			c.To.Bytes(),
			c.Delegatee.Bytes(),
			c.Delta.Sign() < 0,
			new(big.Int).Abs(c.Delta).Bytes(),
		); err != nil {
			return err
		}
	}

	if err := tx.QueryRow("SELECT COALESCE(MAX(eventIndex) + 1, 0) FROM grant_event WHERE blockNumber = ?", b.blockNum).Scan(&next); err != nil {
		return err
	}
	for _, ev := range b.grantEvents {
		ev.Index = next
		next++
		if _, err := tx.Exec(insertGrantEventQuery,
			ev.BlockNumber,
			ev.Index,
			string(ev.Kind),
			ev.Recipient.Bytes(),
			ev.Counterparty.Bytes(),
			ev.Amount.Bytes(),
			ev.Extra.Bytes(),
		); err != nil {
			return err
		}
	}
	return nil
}
