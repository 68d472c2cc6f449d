// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const voteChangeTableSchema = `CREATE TABLE IF NOT EXISTS vote_change (
	blockNumber INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	fromAddr BLOB(20) NOT NULL,
	toAddr BLOB(20) NOT NULL,
	delegatee BLOB(20) NOT NULL,
	negative INTEGER NOT NULL,
	delta BLOB NOT NULL,
	PRIMARY KEY (blockNumber, eventIndex)
);

CREATE INDEX IF NOT EXISTS vote_change_delegatee ON vote_change(delegatee, blockNumber);
CREATE INDEX IF NOT EXISTS vote_change_from ON vote_change(fromAddr, blockNumber);
`

const grantEventTableSchema = `CREATE TABLE IF NOT EXISTS grant_event (
	blockNumber INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	kind TEXT NOT NULL,
	recipient BLOB(20) NOT NULL,
	counterparty BLOB(20) NOT NULL,
	amount BLOB NOT NULL,
	extra BLOB NOT NULL,
	PRIMARY KEY (blockNumber, eventIndex)
);

CREATE INDEX IF NOT EXISTS grant_event_recipient ON grant_event(recipient, blockNumber);
`
