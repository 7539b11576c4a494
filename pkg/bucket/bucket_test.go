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

package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdForDocumentIsStableAndBounded(t *testing.T) {
	id := IdForDocument("music:album:42:highway")
	assert.Equal(t, id, IdForDocument("music:album:42:highway"))
	assert.Less(t, uint64(id), uint64(1)<<UsedBits)
	assert.NotEqual(t, id, IdForDocument("music:album:42:highway61"))
}

func TestSnapshotIsolation(t *testing.T) {
	db := NewMemDatabase()
	id := IdForDocument("music:album:42:highway")
	db.Update(SpaceDefault, Snapshot{Bucket: id, Replicas: []Replica{{Node: 0, DocCount: 5}}})

	snap, ok := db.Snapshot(SpaceDefault, id)
	require.True(t, ok)
	snap.Replicas[0].DocCount = 99

	again, _ := db.Snapshot(SpaceDefault, id)
	assert.EqualValues(t, 5, again.Replicas[0].DocCount, "callers must not see each other's copies")

	_, ok = db.Snapshot(SpaceGlobal, id)
	assert.False(t, ok)
}

func TestReplicaRefsComparison(t *testing.T) {
	a := Snapshot{Bucket: 7, Replicas: []Replica{{Node: 0}, {Node: 1}}}
	b := Snapshot{Bucket: 7, Replicas: []Replica{{Node: 0}, {Node: 1}}}
	c := Snapshot{Bucket: 7, Replicas: []Replica{{Node: 0}, {Node: 2}}}
	assert.True(t, SameReplicaRefs(a.ReplicaRefs(), b.ReplicaRefs()))
	assert.False(t, SameReplicaRefs(a.ReplicaRefs(), c.ReplicaRefs()))
	assert.False(t, SameReplicaRefs(a.ReplicaRefs(), c.ReplicaRefs()[:1]))
}

func TestOwnershipDefaultsAndTransitions(t *testing.T) {
	db := NewMemDatabase()
	id := Id(0x12)
	assert.True(t, db.OwnedByThisDistributor(SpaceDefault, id))
	db.SetOwned(SpaceDefault, id, false)
	assert.False(t, db.OwnedByThisDistributor(SpaceDefault, id))
	assert.True(t, db.OwnedByThisDistributor(SpaceGlobal, id), "spaces are independent")
	db.SetOwned(SpaceDefault, id, true)
	assert.True(t, db.OwnedByThisDistributor(SpaceDefault, id))
}

func TestIdealNodes(t *testing.T) {
	db := NewMemDatabase()
	assert.Nil(t, db.IdealNodes(SpaceDefault, 1), "no topology declared")

	db.SetTopology([]uint16{0, 1, 2, 3}, 2)
	nodes := db.IdealNodes(SpaceDefault, 1)
	require.Len(t, nodes, 2)
	assert.Equal(t, nodes, db.IdealNodes(SpaceDefault, 1), "placement is deterministic")

	other := db.IdealNodes(SpaceDefault, 2)
	require.Len(t, other, 2)

	db.SetTopology([]uint16{5}, 3)
	assert.Equal(t, []uint16{5}, db.IdealNodes(SpaceDefault, 1))
}

func TestParseSpace(t *testing.T) {
	s, ok := ParseSpace("default")
	require.True(t, ok)
	assert.Equal(t, SpaceDefault, s)
	s, ok = ParseSpace("global")
	require.True(t, ok)
	assert.Equal(t, SpaceGlobal, s)
	_, ok = ParseSpace("nope")
	assert.False(t, ok)
	assert.False(t, Space(9).IsValid())
}
