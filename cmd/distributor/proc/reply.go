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

	"github.com/golang/glog"

	"docdist/pkg/proto"
	"docdist/pkg/stats"
)

// Exactly one reply leaves the operation. Every terminal path funnels
// through emitReply, which releases the sequencing handle and samples
// the metrics; later calls are no-ops.

func (op *UpdateOperation) sendOkReply(oldTs proto.Timestamp) {
	r := op.cmd.CreateReply()
	r.Status = proto.OpStatusNoError
	r.OldTimestamp = oldTs
	op.emitReply(r)
}

func (op *UpdateOperation) sendNotFoundReply() {
	r := op.cmd.CreateReply()
	r.Status = proto.OpStatusNotFound
	op.emitReply(r)
}

func (op *UpdateOperation) sendReplyStatus(st proto.OpStatus, msg string) {
	r := op.cmd.CreateReply()
	r.Status = st
	r.OldTimestamp = op.oldTimestamp
	r.Message = msg
	op.emitReply(r)
}

func (op *UpdateOperation) sendLostOwnershipTransientErrorReply() {
	stats.IncOwnershipChange()
	op.sendReplyStatus(proto.OpStatusOwnershipChanged, kLostOwnership)
}

func (op *UpdateOperation) emitReply(r *proto.UpdateReply) {
	if op.replySent {
		return
	}
	op.replySent = true
	r.Trace = op.trace
	op.handle.Release()
	stats.RecordReply(r.Status, time.Since(op.startTime))
	if LOG_DEBUG {
		glog.Infof("Client<-: Update st=%s oldTs=%d rid=%s state=%s mode=%s",
			r.Status.ShortNameString(), uint64(r.OldTimestamp),
			r.RequestId.String(), op.sendState.String(), op.mode.String())
	}
	op.reply(r)
}
