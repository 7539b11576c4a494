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

package app

import (
	"sync"

	"github.com/golang/glog"

	"docdist/cmd/distributor/proc"
)

// A stripe owns its operations: every callback of an operation runs on
// the stripe goroutine, so operations need no locking of their own.
type stripe struct {
	id       int
	ch       chan func()
	done     chan struct{}
	inflight map[*proc.UpdateOperation]struct{}
	wg       *sync.WaitGroup
}

func newStripe(id int, queueLen int, wg *sync.WaitGroup) *stripe {
	return &stripe{
		id:       id,
		ch:       make(chan func(), queueLen),
		done:     make(chan struct{}),
		inflight: make(map[*proc.UpdateOperation]struct{}),
		wg:       wg,
	}
}

func (s *stripe) run() {
	defer s.wg.Done()
	for {
		select {
		case fn := <-s.ch:
			fn()
		case <-s.done:
			// drain whatever is queued, then abort the rest
			for {
				select {
				case fn := <-s.ch:
					fn()
				default:
					for op := range s.inflight {
						op.Close()
					}
					s.inflight = nil
					return
				}
			}
		}
	}
}

func (s *stripe) submit(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- fn:
		return true
	default:
		glog.Warningf("stripe %d queue full", s.id)
		return false
	}
}

func (s *stripe) track(op *proc.UpdateOperation) {
	if s.inflight != nil {
		s.inflight[op] = struct{}{}
	}
}

func (s *stripe) forget(op *proc.UpdateOperation) {
	if s.inflight != nil {
		delete(s.inflight, op)
	}
}

func (s *stripe) stop() {
	close(s.done)
}
