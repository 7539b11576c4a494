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
	"time"

	"docdist/pkg/bucket"
	"docdist/pkg/errors"
	"docdist/pkg/proto"
)

type sendState uint8

const (
	stNoneSent sendState = iota
	stUpdatesSent
	stMetadataGetsSent
	stSingleGetSent
	stFullGetsSent
	stPutsSent
)

func (s sendState) String() string {
	switch s {
	case stNoneSent:
		return "NONE_SENT"
	case stUpdatesSent:
		return "UPDATES_SENT"
	case stMetadataGetsSent:
		return "METADATA_GETS_SENT"
	case stSingleGetSent:
		return "SINGLE_GET_SENT"
	case stFullGetsSent:
		return "FULL_GETS_SENT"
	case stPutsSent:
		return "PUTS_SENT"
	default:
		return "INVALID"
	}
}

type mode uint8

const (
	modeNone mode = iota
	modeFastPath
	modeSlowPath
)

func (m mode) String() string {
	switch m {
	case modeFastPath:
		return "FAST_PATH"
	case modeSlowPath:
		return "SLOW_PATH"
	default:
		return "NONE"
	}
}

// sentSubOp is one entry of the operation's sent-message map; the
// current send-state decides how the matched reply is handled.
type sentSubOp struct {
	opCode proto.OpCode
	node   uint16
	bucket bucket.Id
	sentAt time.Time
}

// subOpTracker counts outstanding replies of one batched multi-node
// send and folds the per-node outcomes into a single status. It is
// reset at each send-state transition that fans out.
type subOpTracker struct {
	numSent       int
	numFailToSend int
	numPending    int
	numSuccess    int
	numError      int
	numWrongOwner int

	failToSendStatus proto.OpStatus
	firstErrorStatus proto.OpStatus
	maxTimestamp     proto.Timestamp
	successNodes     []uint16
}

func (t *subOpTracker) reset() {
	*t = subOpTracker{}
}

func (t *subOpTracker) onSent() {
	t.numSent++
	t.numPending++
}

func (t *subOpTracker) onFailToSend(err *errors.Error) {
	t.numFailToSend++
	switch err.ErrNo() {
	case errors.KErrBusy:
		t.failToSendStatus = proto.OpStatusBusy
	default:
		if t.failToSendStatus != proto.OpStatusBusy {
			t.failToSendStatus = proto.OpStatusNoStorageNode
		}
	}
}

func (t *subOpTracker) onSuccess(r *proto.SubReply) {
	t.numSuccess++
	t.numPending--
	t.successNodes = append(t.successNodes, r.Node)
	if r.Timestamp > t.maxTimestamp {
		t.maxTimestamp = r.Timestamp
	}
}

func (t *subOpTracker) onError(r *proto.SubReply) {
	t.numError++
	t.numPending--
	if t.firstErrorStatus == proto.OpStatusNoError {
		t.firstErrorStatus = r.Status
	}
}

// onWrongOwner consumes a wrong-distribution or bucket-not-found reply;
// either means the cluster state moved under the operation.
func (t *subOpTracker) onWrongOwner(r *proto.SubReply) {
	t.numWrongOwner++
	t.numPending--
}

func (t *subOpTracker) isComplete() bool {
	return t.numPending == 0
}

func (t *subOpTracker) allSucceeded() bool {
	return t.numFailToSend == 0 && t.numSuccess == t.numSent
}

func (t *subOpTracker) sawOwnershipLoss() bool {
	return t.numWrongOwner > 0
}

func (t *subOpTracker) aggregatedStatus() proto.OpStatus {
	if t.sawOwnershipLoss() {
		return proto.OpStatusOwnershipChanged
	}
	if t.allSucceeded() {
		return proto.OpStatusNoError
	}
	if t.numSuccess > 0 {
		// applied on some replicas only; replica repair reconciles the
		// stores, the client still needs to know the write is not
		// uniformly durable
		return proto.OpStatusInconsistent
	}
	if t.numError > 0 {
		return t.firstErrorStatus
	}
	if t.numFailToSend > 0 {
		return t.failToSendStatus
	}
	return proto.OpStatusInternal
}

// metadataSample is one metadata-get outcome used by the slow-path
// decision table.
type metadataSample struct {
	node     uint16
	bucket   bucket.Id
	ts       proto.Timestamp
	checksum uint32
	ok       bool
	status   proto.OpStatus
}
