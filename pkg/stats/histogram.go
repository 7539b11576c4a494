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
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latency percentiles kept in-process for the stats endpoint,
// independent of whether an otel exporter is configured.

var (
	histMu sync.Mutex
	hists  = make(map[string]*hdrhistogram.Histogram)
)

func recordLatency(name string, elapsed time.Duration) {
	histMu.Lock()
	h := hists[name]
	if h == nil {
		h = hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
		hists[name] = h
	}
	h.RecordValue(int64(elapsed / time.Microsecond))
	histMu.Unlock()
}

type LatencySnapshot struct {
	Count int64 `json:"count"`
	P50   int64 `json:"p50_us"`
	P95   int64 `json:"p95_us"`
	P99   int64 `json:"p99_us"`
	Max   int64 `json:"max_us"`
}

func SnapshotLatencies() map[string]LatencySnapshot {
	histMu.Lock()
	defer histMu.Unlock()
	out := make(map[string]LatencySnapshot, len(hists))
	for name, h := range hists {
		out[name] = LatencySnapshot{
			Count: h.TotalCount(),
			P50:   h.ValueAtQuantile(50),
			P95:   h.ValueAtQuantile(95),
			P99:   h.ValueAtQuantile(99),
			Max:   h.Max(),
		}
	}
	return out
}
