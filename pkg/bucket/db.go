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
	"encoding/binary"
	"sort"
	"sync"

	"github.com/spaolacci/murmur3"
)

// Database maps bucket ids to replica sets and answers whether this
// distributor currently owns a bucket. Each Snapshot is a copy taken
// under the database lock. Mutations are not synchronised with stripe
// callbacks: they can land at any time, so two reads within one callback
// can observe different states.
type Database interface {
	Snapshot(space Space, id Id) (Snapshot, bool)
	OwnedByThisDistributor(space Space, id Id) bool
	// IdealNodes lists the nodes a bucket with no replicas should be
	// placed on, highest placement score first.
	IdealNodes(space Space, id Id) []uint16
}

type MemDatabase struct {
	mu         sync.RWMutex
	buckets    [numSpaces]map[Id]Snapshot
	lost       [numSpaces]map[Id]bool
	nodes      []uint16
	redundancy int
}

func NewMemDatabase() *MemDatabase {
	db := &MemDatabase{}
	for i := range db.buckets {
		db.buckets[i] = make(map[Id]Snapshot)
		db.lost[i] = make(map[Id]bool)
	}
	return db
}

func (db *MemDatabase) Snapshot(space Space, id Id) (Snapshot, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s, ok := db.buckets[space][id]
	if !ok {
		return Snapshot{Bucket: id}, false
	}
	cp := s
	cp.Replicas = append([]Replica(nil), s.Replicas...)
	return cp, true
}

func (db *MemDatabase) Update(space Space, s Snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.buckets[space][s.Bucket] = s
}

func (db *MemDatabase) Remove(space Space, id Id) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.buckets[space], id)
}

// SetOwned records an ownership transition delivered by the cluster
// state feed. A bucket defaults to owned until marked otherwise.
func (db *MemDatabase) SetOwned(space Space, id Id, owned bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if owned {
		delete(db.lost[space], id)
	} else {
		db.lost[space][id] = true
	}
}

func (db *MemDatabase) OwnedByThisDistributor(space Space, id Id) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return !db.lost[space][id]
}

// SetTopology declares the storage nodes available for placement and
// the replica count targeted for new buckets.
func (db *MemDatabase) SetTopology(nodes []uint16, redundancy int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nodes = append([]uint16(nil), nodes...)
	db.redundancy = redundancy
}

// IdealNodes ranks the topology nodes by rendezvous hash of
// (bucket, node) and returns the top redundancy of them.
func (db *MemDatabase) IdealNodes(space Space, id Id) []uint16 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if len(db.nodes) == 0 || db.redundancy <= 0 {
		return nil
	}
	type scored struct {
		node  uint16
		score uint64
	}
	ranked := make([]scored, 0, len(db.nodes))
	var key [10]byte
	binary.BigEndian.PutUint64(key[:8], uint64(id))
	for _, n := range db.nodes {
		binary.BigEndian.PutUint16(key[8:], n)
		ranked = append(ranked, scored{node: n, score: murmur3.Sum64(key[:])})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].node < ranked[j].node
	})
	count := db.redundancy
	if count > len(ranked) {
		count = len(ranked)
	}
	nodes := make([]uint16, count)
	for i := 0; i < count; i++ {
		nodes[i] = ranked[i].node
	}
	return nodes
}
