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

// Replica is the bucket database's view of one stored copy of a bucket
// on one storage node.
type Replica struct {
	Node     uint16
	DocCount uint32
	Checksum uint32
	Ready    bool
	Active   bool
	Trusted  bool
}

// Snapshot is an immutable view of a bucket's replica set at a point in
// time. Callers must not retain it across stripe callbacks.
type Snapshot struct {
	Bucket           Id
	Replicas         []Replica
	PendingJoinSplit bool
}

func (s *Snapshot) Nodes() []uint16 {
	nodes := make([]uint16, 0, len(s.Replicas))
	for _, r := range s.Replicas {
		nodes = append(nodes, r.Node)
	}
	return nodes
}

func (s *Snapshot) HasReplicaOnNode(node uint16) bool {
	for _, r := range s.Replicas {
		if r.Node == node {
			return true
		}
	}
	return false
}

// ReplicaRef is one (bucket, node) pair captured when a get sub-op is
// dispatched, compared later to detect replica-set changes.
type ReplicaRef struct {
	Bucket Id
	Node   uint16
}

func (s *Snapshot) ReplicaRefs() []ReplicaRef {
	refs := make([]ReplicaRef, 0, len(s.Replicas))
	for _, r := range s.Replicas {
		refs = append(refs, ReplicaRef{Bucket: s.Bucket, Node: r.Node})
	}
	return refs
}

func SameReplicaRefs(a, b []ReplicaRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
