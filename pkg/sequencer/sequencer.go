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

package sequencer

import (
	"sync"

	"docdist/pkg/document"
)

// Sequencer grants per-document-id mutual exclusion to update
// operations. An operation holds its handle from creation until its
// reply is emitted; a second operation for the same id cannot start
// while the handle is held.
type Sequencer struct {
	inflight sync.Map // string(document.Id) -> struct{}
}

func New() *Sequencer {
	return &Sequencer{}
}

type Handle struct {
	seq   *Sequencer
	docId document.Id
	valid bool
}

// Acquire returns an invalid handle if another operation already holds
// the id.
func (s *Sequencer) Acquire(docId document.Id) Handle {
	_, loaded := s.inflight.LoadOrStore(string(docId), struct{}{})
	if loaded {
		return Handle{}
	}
	return Handle{seq: s, docId: docId, valid: true}
}

func (h *Handle) Valid() bool {
	return h.valid
}

func (h *Handle) DocId() document.Id {
	return h.docId
}

// Release is idempotent; the operation calls it exactly once after the
// reply, but destruction paths may call it again.
func (h *Handle) Release() {
	if h.valid {
		h.seq.inflight.Delete(string(h.docId))
		h.valid = false
	}
}
