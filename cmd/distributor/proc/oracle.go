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

package proc

import (
	"docdist/pkg/bucket"
)

// isFastPathEligible decides whether direct per-replica updates are
// safe: every copy must already be bit-identical, or the replicas would
// diverge under independent application of the update. An empty replica
// set is never eligible; the safe path owns create-if-missing.
func isFastPathEligible(s *bucket.Snapshot) bool {
	if len(s.Replicas) == 0 {
		return false
	}
	if s.PendingJoinSplit {
		return false
	}
	first := s.Replicas[0]
	for _, r := range s.Replicas[1:] {
		if r.DocCount != first.DocCount || r.Checksum != first.Checksum {
			return false
		}
	}
	return true
}
