// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"math"

	"github.com/vestry-labs/vestry/api/events"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/vestry"
)

// logReader reads the log entries written since its previous read.
type logReader struct {
	db      *logdb.LogDB
	account *vestry.Address
	votes   bool
	grants  bool
	from    uint32 // first block of the first read
	vote    *cursor
	grant   *cursor
}

func (r *logReader) start(c *cursor) uint32 {
	if c == nil {
		return r.from
	}
	return c.block
}

// Read returns the new entries, votes before grants within a block.
func (r *logReader) Read(ctx context.Context) ([]*Message, error) {
	var votes, grants []*Message

	if r.votes {
		changes, err := r.db.FilterVoteChanges(ctx, &logdb.VoteFilter{
			Account: r.account,
			Range:   &logdb.Range{From: r.start(r.vote), To: math.MaxUint32},
		})
		if err != nil {
			return nil, err
		}
		for _, c := range changes {
			if r.vote.after(c.BlockNumber, c.Index) {
				votes = append(votes, &Message{Type: TypeVote, Vote: events.ConvertVoteChange(c)})
				r.vote = &cursor{c.BlockNumber, c.Index}
			}
		}
	}
	if r.grants {
		evs, err := r.db.FilterGrantEvents(ctx, &logdb.GrantFilter{
			Recipient: r.account,
			Range:     &logdb.Range{From: r.start(r.grant), To: math.MaxUint32},
		})
		if err != nil {
			return nil, err
		}
		for _, ev := range evs {
			if r.grant.after(ev.BlockNumber, ev.Index) {
				grants = append(grants, &Message{Type: TypeGrant, Grant: events.ConvertGrantEvent(ev)})
				r.grant = &cursor{ev.BlockNumber, ev.Index}
			}
		}
	}
	return merge(votes, grants), nil
}

func merge(votes, grants []*Message) []*Message {
	msgs := make([]*Message, 0, len(votes)+len(grants))
	for len(votes) > 0 && len(grants) > 0 {
		if votes[0].Vote.BlockNumber <= grants[0].Grant.BlockNumber {
			msgs, votes = append(msgs, votes[0]), votes[1:]
		} else {
			msgs, grants = append(msgs, grants[0]), grants[1:]
		}
	}
	msgs = append(msgs, votes...)
	return append(msgs, grants...)
}
