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

	"github.com/golang/glog"
	"github.com/gorilla/mux"
)

type countersBody struct {
	FastPathTaken    uint64 `json:"fast_path_taken"`
	SlowPathTaken    uint64 `json:"slow_path_taken"`
	FastPathRestarts uint64 `json:"fast_path_restarts"`
	TasFailures      uint64 `json:"tas_failures"`
	OwnershipChanges uint64 `json:"ownership_changes"`
	RepliesSent      uint64 `json:"replies_sent"`
}

func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/stats", handleCounters).Methods(http.MethodGet)
	r.HandleFunc("/stats/latency", handleLatency).Methods(http.MethodGet)
	return r
}

func handleCounters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, countersBody{
		FastPathTaken:    FastPathTaken.Get(),
		SlowPathTaken:    SlowPathTaken.Get(),
		FastPathRestarts: FastPathRestarts.Get(),
		TasFailures:      TasFailures.Get(),
		OwnershipChanges: OwnershipChanges.Get(),
		RepliesSent:      RepliesSent.Get(),
	})
}

func handleLatency(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, SnapshotLatencies())
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		glog.Errorf("Failed to encode stats response: %s", err)
	}
}
