// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migrator

import "github.com/vestry-labs/vestry/metrics"

var (
	metricOpCount    = metrics.LazyLoadCounterVec("migrator_op_count", []string{"op", "result"})
	metricLiveGrants = metrics.LazyLoadGauge("migrator_live_grants")
)
