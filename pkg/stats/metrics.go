//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package stats

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.opentelemetry.io/otel/metric/unit"

	"docdist/pkg/proto"
	"docdist/pkg/util"
)

// Sampling points for the update operation: path decisions, TAS
// failures, ownership-change replies, per-sub-op latency. Metric
// identity (exporter wiring) is the app's concern; when Init has not
// run, the otel instruments are skipped while the local counters and
// latency histograms still record.

var (
	enabled bool

	once sync.Once

	opCounter      syncint64.Counter
	pathCounter    syncint64.Counter
	subOpHistogram syncint64.Histogram

	// local counters feeding the HTTP stats snapshot
	FastPathTaken    util.AtomicUint64Counter
	SlowPathTaken    util.AtomicUint64Counter
	FastPathRestarts util.AtomicUint64Counter
	TasFailures      util.AtomicUint64Counter
	OwnershipChanges util.AtomicUint64Counter
	RepliesSent      util.AtomicUint64Counter
)

const meterName = "docdist"

func Init() {
	once.Do(func() {
		meter := global.MeterProvider().Meter(meterName)
		var err error
		if opCounter, err = meter.SyncInt64().Counter(
			"docdist.update.replies",
			instrument.WithDescription("Update replies by status"),
		); err != nil {
			glog.Errorf("Failed to create reply counter: %s", err)
			return
		}
		if pathCounter, err = meter.SyncInt64().Counter(
			"docdist.update.path",
			instrument.WithDescription("Fast/slow path decisions and restarts"),
		); err != nil {
			glog.Errorf("Failed to create path counter: %s", err)
			return
		}
		if subOpHistogram, err = meter.SyncInt64().Histogram(
			"docdist.subop.duration",
			instrument.WithDescription("Sub-operation round-trip latency"),
			instrument.WithUnit(unit.Milliseconds),
		); err != nil {
			glog.Errorf("Failed to create sub-op histogram: %s", err)
			return
		}
		enabled = true
	})
}

func IsEnabled() bool {
	return enabled
}

func IncPath(which string) {
	switch which {
	case "fast":
		FastPathTaken.Add(1)
	case "slow":
		SlowPathTaken.Add(1)
	case "fast_restart":
		FastPathRestarts.Add(1)
	}
	if enabled {
		pathCounter.Add(context.Background(), 1, attribute.String("path", which))
	}
}

func IncTasFailure() {
	TasFailures.Add(1)
	if enabled {
		opCounter.Add(context.Background(), 1, attribute.String("status", "tas_failed"))
	}
}

func IncOwnershipChange() {
	OwnershipChanges.Add(1)
	if enabled {
		opCounter.Add(context.Background(), 1, attribute.String("status", "ownership_changed"))
	}
}

// RecordReply samples the final reply: status counter plus whole-op
// latency recorded in the "op" histogram slot.
func RecordReply(st proto.OpStatus, elapsed time.Duration) {
	RepliesSent.Add(1)
	if enabled {
		opCounter.Add(context.Background(), 1, attribute.String("status", st.ShortNameString()))
	}
	recordLatency("op", elapsed)
}

func RecordSubOp(op proto.OpCode, elapsed time.Duration) {
	if enabled {
		subOpHistogram.Record(context.Background(), elapsed.Milliseconds(),
			attribute.String("op", op.String()))
	}
	recordLatency(op.String(), elapsed)
}
