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
	"testing"

	"github.com/stretchr/testify/assert"

	"docdist/pkg/bucket"
)

func TestFastPathEligibility(t *testing.T) {
	eligible := bucket.Snapshot{Replicas: []bucket.Replica{
		{Node: 0, DocCount: 10, Checksum: 0xABCD},
		{Node: 1, DocCount: 10, Checksum: 0xABCD},
	}}
	assert.True(t, isFastPathEligible(&eligible))

	single := bucket.Snapshot{Replicas: []bucket.Replica{{Node: 2, DocCount: 3, Checksum: 0x11}}}
	assert.True(t, isFastPathEligible(&single))

	empty := bucket.Snapshot{}
	assert.False(t, isFastPathEligible(&empty), "empty replica set is never eligible")

	diverged := bucket.Snapshot{Replicas: []bucket.Replica{
		{Node: 0, DocCount: 10, Checksum: 0xABCD},
		{Node: 1, DocCount: 9, Checksum: 0x1234},
	}}
	assert.False(t, isFastPathEligible(&diverged))

	checksumOnly := bucket.Snapshot{Replicas: []bucket.Replica{
		{Node: 0, DocCount: 10, Checksum: 0xABCD},
		{Node: 1, DocCount: 10, Checksum: 0x1234},
	}}
	assert.False(t, isFastPathEligible(&checksumOnly))

	pending := bucket.Snapshot{
		Replicas: []bucket.Replica{
			{Node: 0, DocCount: 10, Checksum: 0xABCD},
			{Node: 1, DocCount: 10, Checksum: 0xABCD},
		},
		PendingJoinSplit: true,
	}
	assert.False(t, isFastPathEligible(&pending))
}
