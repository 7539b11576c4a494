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
	"docdist/pkg/proto"
)

// newestReplica is the replica selected to serve the authoritative
// full get of the safe path.
type newestReplica struct {
	node      uint16
	bucketId  bucket.Id
	timestamp proto.Timestamp
	checksum  uint32
}

// selectNewestReplica picks the successful sample with the highest
// persisted timestamp; ties break toward the lowest node index. A zero
// timestamp loses to any nonzero one.
func selectNewestReplica(samples []metadataSample) (best newestReplica, ok bool) {
	for _, s := range samples {
		if !s.ok {
			continue
		}
		if !ok ||
			s.ts > best.timestamp ||
			(s.ts == best.timestamp && s.node < best.node) {
			best = newestReplica{node: s.node, bucketId: s.bucket, timestamp: s.ts, checksum: s.checksum}
			ok = true
		}
	}
	return
}
