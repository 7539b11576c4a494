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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdist/pkg/proto"
)

func TestStatsEndpoint(t *testing.T) {
	IncPath("fast")
	IncPath("slow")
	IncPath("fast_restart")
	IncTasFailure()
	RecordReply(proto.OpStatusNoError, 3*time.Millisecond)
	RecordSubOp(proto.OpCodePut, 2*time.Millisecond)

	srv := httptest.NewServer(NewRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body countersBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.GreaterOrEqual(t, body.FastPathTaken, uint64(1))
	assert.GreaterOrEqual(t, body.TasFailures, uint64(1))
	assert.GreaterOrEqual(t, body.RepliesSent, uint64(1))

	lresp, err := http.Get(srv.URL + "/stats/latency")
	require.NoError(t, err)
	defer lresp.Body.Close()
	var latencies map[string]LatencySnapshot
	require.NoError(t, json.NewDecoder(lresp.Body).Decode(&latencies))
	assert.Contains(t, latencies, "Put")
	assert.Contains(t, latencies, "op")
	assert.GreaterOrEqual(t, latencies["Put"].Count, int64(1))
}
