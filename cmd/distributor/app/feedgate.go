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
)

// FeedGate is the feed-admission predicate; while it is closed by Block,
// every new update is refused until Unblock reopens it.
type FeedGate struct {
	mu     sync.RWMutex
	closed bool
	reason string
}

func (g *FeedGate) Block(reason string) {
	g.mu.Lock()
	g.closed = true
	g.reason = reason
	g.mu.Unlock()
}

func (g *FeedGate) Unblock() {
	g.mu.Lock()
	g.closed = false
	g.reason = ""
	g.mu.Unlock()
}

func (g *FeedGate) Blocked() (bool, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.closed, g.reason
}
