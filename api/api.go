// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vestry-labs/vestry/api/accounts"
	"github.com/vestry-labs/vestry/api/events"
	"github.com/vestry-labs/vestry/api/grants"
	"github.com/vestry-labs/vestry/api/ops"
	"github.com/vestry-labs/vestry/api/subscriptions"
	"github.com/vestry-labs/vestry/api/votes"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	PprofOn         bool
	SkipLogs        bool
	EnableReqLogger bool
	EnableMetrics   bool
	EnableOps       bool // accept operations over POST /ops
	LogsLimit       uint64
}

// New return api router and a func closing open subscriptions.
func New(
	x *runtime.Executor,
	logDB *logdb.LogDB,
	opts Options,
) (http.HandlerFunc, func()) {
	rt := x.Runtime()
	head := x.Head

	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	grants.New(rt.Engine(), head, x.View).
		Mount(router, "/grants")
	votes.New(rt.Engine(), head, x.View).
		Mount(router, "/votes")
	accounts.New(rt.Source(), rt.Target(), rt.Engine().Address(), x.View).
		Mount(router, "/accounts")
	closeSubs := func() {}
	if !opts.SkipLogs && logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs")
		subs := subscriptions.New(x, logDB, origins)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}
	if opts.EnableOps {
		ops.New(x).
			Mount(router, "/ops")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, closeSubs
}
